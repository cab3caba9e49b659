// Package pipeline runs one chat turn through the fixed stage sequence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/logger"
	"safebites-be/pkg/rag/contextresolver"
	"safebites-be/pkg/rag/intent"
	"safebites-be/pkg/rag/response"
	"safebites-be/pkg/rag/retriever"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	StageResolveContext = "resolve_context"
	StageClassifyIntent = "classify_intent"
	StageQueryParts     = "generate_query_parts"
	StageMenuRetrieval  = "menu_retrieval"
	StageDishInfo       = "dish_info_retrieval"
	StagePreferences    = "preferences_retrieval"
	StageRetrieve       = "retrieve"
	StageSynthesize     = "synthesize_response"
)

const (
	PolicyProceed = "proceed"
	PolicyAbort   = "abort"
)

type Config struct {
	StageTimeout          time.Duration
	ResolverFailurePolicy string
}

type Input struct {
	UserID    uuid.UUID
	SessionID string
	// RestaurantID is uuid.Nil when the turn searches every restaurant.
	RestaurantID uuid.UUID
	Query        string
	History      []entity.ContextItem
}

type stage struct {
	name string
	run  func(ctx context.Context, b *turnBuilder) error
}

// PipelineExecutor sequences the stages of a chat turn. Model failures inside
// a stage become recorded fallbacks; only an aborting resolver fails the turn.
type PipelineExecutor struct {
	resolver    *contextresolver.Resolver
	classifier  *intent.Classifier
	menu        *retriever.MenuRetriever
	dishInfo    *retriever.DishInfoRetriever
	preferences *retriever.PreferencesRetriever
	config      Config
	logger      logger.ILogger
	tracer      trace.Tracer
	stages      []stage
}

func NewPipelineExecutor(
	resolver *contextresolver.Resolver,
	classifier *intent.Classifier,
	menu *retriever.MenuRetriever,
	dishInfo *retriever.DishInfoRetriever,
	preferences *retriever.PreferencesRetriever,
	config Config,
	logger logger.ILogger,
) *PipelineExecutor {
	if config.ResolverFailurePolicy != PolicyAbort {
		config.ResolverFailurePolicy = PolicyProceed
	}
	p := &PipelineExecutor{
		resolver:    resolver,
		classifier:  classifier,
		menu:        menu,
		dishInfo:    dishInfo,
		preferences: preferences,
		config:      config,
		logger:      logger,
		tracer:      otel.Tracer("safebites/pipeline"),
	}
	p.stages = []stage{
		{name: StageResolveContext, run: p.resolveContext},
		{name: StageClassifyIntent, run: p.classifyIntent},
		{name: StageQueryParts, run: p.generateQueryParts},
		{name: StageRetrieve, run: p.retrieve},
		{name: StageSynthesize, run: p.synthesize},
	}
	return p
}

// Execute always returns the ChatState built so far, even on error.
func (p *PipelineExecutor) Execute(ctx context.Context, in Input) (*entity.ChatState, error) {
	b := newTurnBuilder(in)
	b.start()

	for _, s := range p.stages {
		if err := p.runStage(ctx, s, b); err != nil {
			p.logger.Error("Pipeline", fmt.Sprintf("Stage %s failed the turn", s.name), map[string]interface{}{
				"session_id": in.SessionID,
				"error":      err.Error(),
			})
			return b.fail(s.name, err), err
		}
	}

	state := b.complete()
	p.logger.Info("Pipeline", "Turn completed", map[string]interface{}{
		"session_id":   in.SessionID,
		"intents":      len(state.Intents),
		"stage_errors": len(state.StageErrors),
		"status":       state.Response.Status,
	})
	return state, nil
}

func (p *PipelineExecutor) runStage(ctx context.Context, s stage, b *turnBuilder) error {
	ctx, span := p.tracer.Start(ctx, s.name, trace.WithAttributes(
		attribute.String("session.id", b.state.SessionId),
		attribute.String("restaurant.id", b.state.RestaurantId.String()),
	))
	defer span.End()

	if p.config.StageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.StageTimeout)
		defer cancel()
	}

	before := len(b.state.StageErrors)
	err := s.run(ctx, b)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	// An expired stage deadline is a stage failure even when every fallback inside absorbed it.
	if err == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && len(b.state.StageErrors) == before {
		b.recordFallback(s.name, fmt.Errorf("stage timed out: %w", ctx.Err()))
	}
	span.SetAttributes(attribute.Int("stage.fallbacks", len(b.state.StageErrors)-before))
	return err
}

func (p *PipelineExecutor) resolveContext(ctx context.Context, b *turnBuilder) error {
	resolution, err := p.resolver.Resolve(ctx, b.state.Query, b.history)
	if err == nil {
		b.setResolution(resolution.Query, resolution.Summary)
		return nil
	}

	if p.config.ResolverFailurePolicy == PolicyAbort {
		return apperror.Generic(err, "context resolution failed")
	}
	p.logger.Warn("Pipeline", "Context resolution failed, continuing with raw query", map[string]interface{}{
		"error": err.Error(),
	})
	b.recordFallback(StageResolveContext, err)
	b.setResolution(b.state.Query, "")
	return nil
}

func (p *PipelineExecutor) classifyIntent(ctx context.Context, b *turnBuilder) error {
	out, err := p.classifier.Classify(ctx, b.state.RewrittenQuery)
	if errors.Is(err, intent.ErrEmptyQuery) {
		return apperror.BadRequest("query is required")
	}
	if err != nil {
		return err
	}
	if out.Degraded() {
		b.recordFallback(StageClassifyIntent, out.Err)
	}
	b.setIntents(out.Value)
	return nil
}

func (p *PipelineExecutor) generateQueryParts(ctx context.Context, b *turnBuilder) error {
	b.setQueryParts(GenerateQueryParts(b.state.Intents))
	return nil
}

// retrieve fans out to the three retrievers; each only sees its own sub-queries.
func (p *PipelineExecutor) retrieve(ctx context.Context, b *turnBuilder) error {
	parts := b.state.QueryParts
	restaurantID := searchScope(b.state.RestaurantId)
	summary := b.state.ContextSummary

	menu := []entity.MenuResult{}
	info := []entity.InfoResult{}
	prefs := []entity.PreferenceResult{}
	var menuErr, infoErr, prefsErr error

	g, gctx := errgroup.WithContext(ctx)
	if queries := parts[entity.IntentMenuSearch]; len(queries) > 0 {
		g.Go(func() error {
			out := p.menu.Retrieve(gctx, restaurantID, queries, summary)
			menu, menuErr = out.Value, out.Err
			return nil
		})
	}
	if queries := parts[entity.IntentDishInfo]; len(queries) > 0 {
		g.Go(func() error {
			out := p.dishInfo.Retrieve(gctx, restaurantID, queries, summary)
			info, infoErr = out.Value, out.Err
			return nil
		})
	}
	if queries := parts[entity.IntentUserPreferences]; len(queries) > 0 {
		g.Go(func() error {
			out := p.preferences.Retrieve(gctx, queries, b.history)
			prefs, prefsErr = out.Value, out.Err
			return nil
		})
	}
	_ = g.Wait()

	b.recordFallback(StageMenuRetrieval, menuErr)
	b.recordFallback(StageDishInfo, infoErr)
	b.recordFallback(StagePreferences, prefsErr)
	b.setRetrieval(menu, info, prefs)
	return nil
}

func (p *PipelineExecutor) synthesize(ctx context.Context, b *turnBuilder) error {
	b.setResponse(response.Synthesize(b.state))
	return nil
}

// searchScope maps the nil restaurant to the empty scope, which searches every restaurant.
func searchScope(restaurantID uuid.UUID) string {
	if restaurantID == uuid.Nil {
		return ""
	}
	return restaurantID.String()
}

// GenerateQueryParts groups intents by type, keeping their relative order.
func GenerateQueryParts(intents []entity.IntentQuery) entity.QueryParts {
	parts := entity.QueryParts{}
	for _, in := range intents {
		if !in.Type.Valid() || strings.TrimSpace(in.Query) == "" {
			continue
		}
		parts[in.Type] = append(parts[in.Type], in.Query)
	}
	return parts
}
