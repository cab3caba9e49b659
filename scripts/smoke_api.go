//go:build ignore

// Walks the public API of a locally running server:
//
//	go run scripts/smoke_api.go -base http://localhost:8000
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

var baseURL string

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func prettyPrint(raw json.RawMessage) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(buf.String())
}

func do(req *http.Request, token string) (*envelope, int) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		color.Red("Request failed: %v", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var env envelope
	_ = json.Unmarshal(body, &env)
	return &env, resp.StatusCode
}

func sendJSON(method, path, token string, body interface{}) (*envelope, int) {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req, _ := http.NewRequest(method, baseURL+path, reader)
	req.Header.Set("Content-Type", "application/json")
	return do(req, token)
}

func step(title string, env *envelope, status int) {
	color.Yellow("\n%s", title)
	if status >= 400 {
		color.Red("Status: %d %s", status, env.Message)
		os.Exit(1)
	}
	color.Green("Status: %d %s", status, env.Message)
	prettyPrint(env.Data)
}

func main() {
	flag.StringVar(&baseURL, "base", "http://localhost:8000", "server base url")
	menuPath := flag.String("menu", "", "optional menu CSV to upload")
	flag.Parse()

	color.Cyan("🚀 SafeBites API smoke test against %s", baseURL)
	username := fmt.Sprintf("smoke_%d", time.Now().Unix())

	env, status := sendJSON("POST", "/users/signup", "", map[string]interface{}{
		"name":                 "Smoke Tester",
		"username":             username,
		"password":             "smoke-pass",
		"allergen_preferences": []string{"peanuts"},
	})
	step("[USER] 1. Sign up", env, status)

	env, status = sendJSON("POST", "/users/login?username="+username+"&password=smoke-pass", "", nil)
	step("[USER] 2. Login", env, status)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	_ = json.Unmarshal(env.Data, &login)

	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	_ = w.WriteField("name", "Smoke Trattoria")
	_ = w.WriteField("cuisine", "Italian")
	_ = w.WriteField("rating", "4.5")
	if *menuPath != "" {
		data, err := os.ReadFile(*menuPath)
		if err != nil {
			color.Red("Cannot read menu: %v", err)
			os.Exit(1)
		}
		part, _ := w.CreateFormFile("menu_csv", "menu.csv")
		_, _ = part.Write(data)
	}
	_ = w.Close()
	req, _ := http.NewRequest("POST", baseURL+"/restaurants/", &form)
	req.Header.Set("Content-Type", w.FormDataContentType())
	env, status = do(req, "")
	step("[RESTAURANT] 3. Create", env, status)
	var created struct {
		Restaurant struct {
			Id string `json:"id"`
		} `json:"restaurant"`
	}
	_ = json.Unmarshal(env.Data, &created)
	restaurantId := created.Restaurant.Id

	env, status = sendJSON("POST", "/dishes/"+restaurantId, "", map[string]interface{}{
		"name":        "Pesto Pasta",
		"price":       13.5,
		"ingredients": []string{"basil", "pine nuts", "parmesan"},
		"allergens":   []map[string]string{{"allergen": "tree_nuts"}, {"allergen": "dairy"}},
	})
	step("[DISH] 4. Create", env, status)

	env, status = sendJSON("GET", "/dishes/?restaurant="+restaurantId, login.AccessToken, nil)
	step("[DISH] 5. List as viewer", env, status)

	env, status = sendJSON("POST", "/restaurants/search", login.AccessToken, map[string]string{
		"query":         "what pasta do you have without peanuts?",
		"restaurant_id": restaurantId,
	})
	step("[CHAT] 6. Search", env, status)

	color.Cyan("\n✅ Smoke test finished")
}
