package constant

// Prompt templates for the chat pipeline. Each is a fmt format string; the
// placeholders are documented next to the constant.

const (
	// ContextRewritePrompt: query, context JSON.
	ContextRewritePrompt = `You are a context resolver for a food delivery assistant.
Your job is to interpret the current user query in the context of prior conversation.

User query: %s

Previous Context:
%s

Task: Rewrite the query to be self-contained by incorporating relevant context.

Rules:
1. DO NOT rewrite user preference queries. If the query asks about the USER'S OWN preferences, allergens, or account info (e.g. "what am I allergic to?", "what are my preferences?"), return it EXACTLY as-is.
2. If the user query refers to something previously mentioned ("that", "those", "it"), resolve what it refers to.
3. If the user query is a refinement (adds a constraint without mentioning a dish type), merge it into the previous topic:
   - Previous: "show me pizzas", Current: "under $20" -> "show me pizzas under $20"
   - Previous: "burgers", Current: "gluten-free" -> "show me gluten-free burgers"
   - Previous: "Italian dishes", Current: "less than 500 calories" -> "show me Italian dishes less than 500 calories"
4. If the user query is a new request (mentions a new dish type or topic), use it as-is.
5. If user allergens are in context, do not add them to the query. They are handled separately.

Return ONLY the rewritten query text, nothing else.`

	// ContextSummaryPrompt: context JSON, rewritten query.
	ContextSummaryPrompt = `You are summarizing conversation context for another LLM.
Given the following context, extract only relevant information that might help answer the query below.

Context: %s
Query: %s

Return a short, factual summary (under 300 words) describing relevant dishes, filters, or results.`

	// IntentClassificationPrompt: query.
	IntentClassificationPrompt = `You are an expert at splitting complex food-related user queries into independent, actionable components.

Produce a JSON object with these four keys:
1. "menu_search": self-contained queries that ask for dishes, meals, or items.
2. "dish_info": self-contained queries that ask for information about dishes (ingredients, calories, allergens, price, etc.).
3. "user_preferences": questions about the user's own preferences or allergens (e.g. "what am I allergic to?").
4. "irrelevant": parts unrelated to food or restaurant services.

Rules:
- Each part must be self-contained. If it depends on previous results, say so explicitly ("from the dishes above").
- Keep dependent parts in order.
- Respond only with valid JSON.

Example:
User Query: "Do you have vegan pasta options? Also, what are your opening hours? Ignore seafood dishes."
Output:
{"menu_search": ["List vegan pasta options excluding seafood dishes"], "dish_info": [], "user_preferences": [], "irrelevant": ["What are your opening hours?"]}

Example:
User Query: "Provide five chocolate dishes under $20 and tell me the calories of each. What am I allergic to?"
Output:
{"menu_search": ["List five chocolate dishes under $20"], "dish_info": ["Provide the calories of the five chocolate dishes under $20"], "user_preferences": ["What am I allergic to?"], "irrelevant": []}

Now split this user query:
%s`

	// QueryIntentPrompt: query.
	QueryIntentPrompt = `You are an intent extraction expert for food-related natural language queries.
Split the query into two lists:
1. positive: what the user explicitly wants or is open to. Expand semantically with closely related dishes, cuisines, or styles.
2. negative: what the user explicitly wants to exclude. Keep it narrow: only the items mentioned plus direct synonyms or variants ("meatballs" -> ["meatball", "meat balls", "polpette"], not "beef").

Return valid JSON only: {"positive": [...], "negative": [...]}

Example: "Pasta dishes without meatballs"
{"positive": ["pasta dishes", "pasta", "spaghetti", "penne"], "negative": ["meatballs", "meatball", "meat balls", "polpette"]}

Example: "Anything but seafood"
{"positive": ["anything", "non-seafood", "meat and poultry", "vegetarian"], "negative": ["seafood", "fish", "shellfish", "prawns", "crab"]}

Query: %s`

	// FilterExtractionPrompt: query.
	FilterExtractionPrompt = `You are a filter extraction model for a restaurant system.
Extract filters related to price, ingredients, allergens, or nutrition.

Return only JSON in this structure:
{
  "price": {"min": <number>, "max": <number or "inf">},
  "ingredients": {"include": [...], "exclude": [...]},
  "allergens": {"exclude": [...]},
  "nutrition": {"max_calories": <number>, "min_protein": <number>, "max_fat": <number>, "max_carbs": <number>}
}

Rules:
- Extract only true ingredients ("cheese", "chicken", "tomato"). Dish types such as "pizza", "burger" or "pasta" are never ingredients.
- If the user asks for a dish type ("List pizza dishes"), leave ingredients.include empty.
- Use price, allergens and nutrition only when mentioned. Omit anything not mentioned.
- Allergen-free requests map to allergens.exclude using: peanuts, tree_nuts, dairy, egg, soy, wheat_gluten, fish, shellfish, sesame.
  "nut-free" -> ["peanuts", "tree_nuts"], "dairy-free" -> ["dairy"], "gluten-free" -> ["wheat_gluten"].

Example: "Show me chocolate dishes under 10 dollars."
{"price": {"min": 0, "max": 10}, "ingredients": {"include": ["chocolate"], "exclude": []}, "allergens": {"exclude": []}, "nutrition": {}}

Example: "List pizza dishes"
{"price": {}, "ingredients": {"include": [], "exclude": []}, "allergens": {}, "nutrition": {}}

Now analyze this query:
%s`

	// DishValidationPrompt: query, dishes JSON.
	DishValidationPrompt = `You are an intelligent restaurant assistant helping to filter dishes for a user query.

User query: %s

For each of the following dishes, decide whether it matches the user's request.
Be strict but reasonable: match meaningfully relevant dishes, not partial overlaps.

Respond ONLY with a JSON array:
[{"dish_id": "...", "include": true, "reason": "..."}]

Dishes:
%s`

	// DishInfoIntentPrompt: query.
	DishInfoIntentPrompt = `You are an intent analyzer for a food assistant.
Given a query (which may include context), decide whether restaurant menu data must be fetched.

- "requires_menu_data": the question is about dishes, ingredients, allergens, or calories AND the context does not contain the answer.
- "general_knowledge": the question is conceptual or general, OR the context already contains the answer.

Query: %s

Respond ONLY with JSON: {"type": "requires_menu_data"} or {"type": "general_knowledge"}`

	// GeneralKnowledgePrompt: query.
	GeneralKnowledgePrompt = `You are a food assistant. Answer the following query using general food knowledge only.
Do NOT assume restaurant-specific information unless explicitly mentioned.

Query: %s

Respond ONLY with JSON: {"answer": "your answer to the query"}`

	// DishInfoSynthesisPrompt: query, dish data.
	DishInfoSynthesisPrompt = `You are a food information assistant.
Using ONLY the following dish data, answer the user's query.

Respond ONLY with JSON:
{"dish_name": "name of the dish being referred to", "requested_info": "answer to the query", "source_data": [relevant dish data used]}

User Query: %s

Dish Data:
%s`

	// UserPreferencesPrompt: query, allergen list.
	UserPreferencesPrompt = `You are a helpful assistant answering questions about the user's preferences and account information.

User Query: %s

User Information:
- Allergen Preferences: %s

Give a helpful, conversational answer.

Respond ONLY with JSON: {"answer": "your answer"}`

	// DishEnrichmentPrompt: name, description, ingredients.
	DishEnrichmentPrompt = `You are an allergen annotator for a restaurant dish database.

Given a dish name, description and (maybe) ingredients, infer ONLY:
- ingredients: list of words/phrases, only if none are given
- allergens: list of {"allergen", "confidence" in [0,1], "why"}
- nutrition_facts: approximate values with confidence for calories (kcal), protein, fat, carbohydrates, sugar, fiber (grams)
- summary: a one-line summary of the dish

Allowed allergens: peanuts, tree_nuts, dairy, egg, soy, wheat_gluten, fish, shellfish, sesame.
Do NOT change the dish name, price, or any other metadata.

Dish:
Name: "%s"
Description: "%s"
Ingredients: "%s"

Respond ONLY with JSON:
{"ingredients": [...], "allergens": [{"allergen": "dairy", "confidence": 0.95, "why": "..."}], "nutrition_facts": {"calories": {"value": 450, "confidence": 0.6}}, "summary": "..."}`
)

const (
	IrrelevantQueryMessage   = "Sorry, I couldn't understand your query. Please rephrase it."
	NoAllergenPreferences    = "None set"
	IntentDerivationFailed   = "Intent derivation failed"
	NoDishInfoResponse       = "No response generated"
	UnparsableDishInfo       = "Could not parse LLM Response"
	NoRelevantDishesTemplate = "No relevant dishes found for query '%s'"
	UnexpectedErrorTemplate  = "Unexpected error: %s"
)
