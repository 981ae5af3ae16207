package productassistant

import (
	"context"
	"time"

	"product-assistant/internal/common/logger"
	"product-assistant/internal/common/metrics"
	"product-assistant/internal/common/observability"
	"product-assistant/internal/models"
	extractattributes "product-assistant/internal/workers/assistant/extract-attributes"
	parseattributes "product-assistant/internal/workers/assistant/parse-attributes"
	searchcatalog "product-assistant/internal/workers/assistant/search-catalog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	stageExtract = "extract"
	stageParse   = "parse"
	stageSearch  = "search"

	outcomeSearch   = "search"
	outcomeFollowUp = "follow_up"
	outcomeError    = "error"
)

// Reply is the terminal state of one pipeline run.
type Reply struct {
	State      models.PipelineState
	Attributes models.StructuredAttributes
	Results    []map[string]interface{}
	Message    string
	Mode       models.SearchMode
}

// Pipeline runs extraction, parsing and, when the model says so, the catalog
// search. Runs share no mutable state.
type Pipeline struct {
	model      extractattributes.Model
	engine     *searchcatalog.Engine
	collection string
	obs        *observability.Observability
	logger     logger.Logger
}

func NewPipeline(model extractattributes.Model, engine *searchcatalog.Engine, collection string, obs *observability.Observability, log logger.Logger) *Pipeline {
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Pipeline{
		model:      model,
		engine:     engine,
		collection: collection,
		obs:        obs,
		logger:     log,
	}
}

// Run moves one conversation from AwaitingAttributes to either ReadyToSearch
// or FollowUpRequested. Only extraction and parse errors are returned.
func (p *Pipeline) Run(ctx context.Context, query string) (*Reply, error) {
	start := time.Now()
	ctx, span := p.obs.StartSpan(ctx, "assistant.pipeline")
	defer span.End()

	reply, err := p.run(ctx, query)

	outcome := outcomeError
	if err == nil {
		outcome = outcomeSearch
		if reply.State == models.StateFollowUpRequested {
			outcome = outcomeFollowUp
		}
		span.SetAttributes(attribute.String("assistant.state", string(reply.State)))
	} else {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	metrics.PipelineRequests.WithLabelValues(outcome).Inc()
	p.obs.RecordJobProcessed(ctx, outcome)
	p.obs.RecordJobDuration(ctx, time.Since(start), outcome)
	return reply, err
}

func (p *Pipeline) run(ctx context.Context, query string) (*Reply, error) {
	reply := &Reply{State: models.StateAwaitingAttributes}

	var raw string
	err := p.stage(ctx, stageExtract, func(ctx context.Context) error {
		var err error
		raw, err = extractattributes.Extract(ctx, p.model, query)
		return err
	})
	if err != nil {
		p.logger.Error("attribute extraction failed", map[string]interface{}{"error": err})
		return nil, err
	}

	err = p.stage(ctx, stageParse, func(context.Context) error {
		var err error
		reply.Attributes, err = parseattributes.Parse(raw)
		return err
	})
	if err != nil {
		p.logger.Error("model response could not be parsed", map[string]interface{}{"error": err})
		return nil, err
	}
	p.logger.Debug("attributes extracted", reply.Attributes.LogFields())

	if !reply.Attributes.MoveOn {
		reply.State = models.StateFollowUpRequested
		reply.Results = []map[string]interface{}{}
		reply.Message = reply.Attributes.FollowUpMessage.String()
		return reply, nil
	}

	reply.State = models.StateReadyToSearch
	_ = p.stage(ctx, stageSearch, func(ctx context.Context) error {
		res := p.engine.Search(ctx, p.collection, reply.Attributes.Filters())
		reply.Results = res.Records
		reply.Mode = res.Mode
		return nil
	})
	reply.Message = models.SearchConfirmation
	return reply, nil
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := p.obs.StartSpan(ctx, "assistant."+name, attribute.String("assistant.stage", name))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
