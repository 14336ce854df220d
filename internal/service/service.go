package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"pcg/internal/algebra"
	"pcg/internal/codec"
	"pcg/internal/config"
	"pcg/internal/domain"
	"pcg/internal/kb"
	"pcg/internal/loader"
	"pcg/internal/metrics"
	"pcg/internal/process"
	"pcg/internal/repository"
	"pcg/internal/runtime"
	"pcg/internal/value"

	"go.uber.org/zap"
)

// Options are the runtime settings a service applies to every run
type Options struct {
	Format           string
	SuppressComments bool
	MaxCycles        int
	Timeout          time.Duration
}

// OptionsFromConfig extracts the service settings from cfg
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Format:           cfg.Codec.Format,
		SuppressComments: cfg.Codec.SuppressComments,
		MaxCycles:        cfg.Process.MaxCycles,
		Timeout:          cfg.ProcessTimeout(),
	}
}

// RunReport is the outcome of one process activation
type RunReport struct {
	Process string
	Cycles  int
	Firings int
	Exports []process.Export
	Outputs map[string]value.Value
}

// KnowledgeService drives processes over a loaded knowledge file
type KnowledgeService struct {
	mu        sync.Mutex
	opts      Options
	repo      repository.Repository
	eventBus  *EventBus
	logger    *zap.Logger
	metrics   *metrics.Metrics
	knowledge *loader.Knowledge
	path      string
}

// NewKnowledgeService creates a service. repo, eventBus and m may be nil.
func NewKnowledgeService(opts Options, repo repository.Repository, eventBus *EventBus, logger *zap.Logger, m *metrics.Metrics) *KnowledgeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeService{
		opts:     opts,
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		metrics:  m,
	}
}

// Load reads a knowledge file, replacing whatever was loaded before. The
// persisted canon of the same name, if any, is merged into it.
func (s *KnowledgeService) Load(ctx context.Context, path string) (*loader.Knowledge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, err := loader.LoadFile(path,
		kb.WithLogger(s.logger),
		kb.WithMetrics(s.metrics),
		kb.WithListener(s.onChange),
	)
	if err != nil {
		return nil, err
	}

	restored := 0
	if s.repo != nil {
		graphs, err := s.repo.LoadCanon(ctx, k.Name, k.KB.Vocabulary())
		if err != nil {
			return nil, fmt.Errorf("failed to restore canon %s: %w", k.Name, err)
		}
		for _, g := range graphs {
			added, err := k.KB.Assert(g, false)
			if err != nil {
				return nil, fmt.Errorf("failed to restore canon %s: %w", k.Name, err)
			}
			if added {
				restored++
			}
		}
	}

	s.knowledge = k
	s.path = path
	s.logger.Info("knowledge loaded",
		zap.String("path", path),
		zap.String("kb", k.Name),
		zap.Int("graphs", k.KB.Len()),
		zap.Int("restored", restored),
		zap.Int("processes", len(k.Processes)))

	s.eventBus.Publish(Event{
		Type: EventKnowledgeLoaded,
		Payload: map[string]interface{}{
			"path":      path,
			"kb":        k.Name,
			"graphs":    k.KB.Len(),
			"processes": len(k.Processes),
		},
	})
	return k, nil
}

// Knowledge returns the loaded knowledge, or nil
func (s *KnowledgeService) Knowledge() *loader.Knowledge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knowledge
}

// Path returns the path of the loaded knowledge file
func (s *KnowledgeService) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Run activates the named process with args bound to its in parameters.
// Exports are logged and the resulting canon saved when a repository is
// configured.
func (s *KnowledgeService) Run(ctx context.Context, name string, args []string) (*RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.knowledge == nil {
		return nil, domain.StructuralError("run process", "no knowledge loaded")
	}
	k := s.knowledge
	p, ok := k.Process(name)
	if !ok {
		return nil, domain.StructuralError("run process", "unknown process %s", name)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	var engineOpts []process.Option
	engineOpts = append(engineOpts, process.WithLogger(s.logger), process.WithMetrics(s.metrics))
	if s.opts.MaxCycles > 0 {
		engineOpts = append(engineOpts, process.WithMaxCycles(s.opts.MaxCycles))
	}
	rc := runtime.New(k.KB,
		runtime.WithLogger(s.logger),
		runtime.WithMetrics(s.metrics),
		runtime.WithEngine(process.NewEngine(engineOpts...)),
	)

	res, err := rc.RunProcess(ctx, p, ParseArgs(args))
	if err != nil {
		s.eventBus.Publish(Event{
			Type:    EventProcessFailed,
			Payload: map[string]string{"process": name, "error": err.Error()},
		})
		return nil, err
	}

	for _, ex := range res.Exports {
		s.eventBus.Publish(Event{
			Type: EventGraphExported,
			Payload: map[string]interface{}{
				"process": name,
				"rule":    ex.Rule,
				"retract": ex.Retract,
				"graph":   codec.FormatCGIF(ex.Graph),
			},
		})
	}

	if s.repo != nil {
		if err := s.persist(ctx, k, res); err != nil {
			return nil, err
		}
	}

	report := &RunReport{
		Process: name,
		Cycles:  res.Cycles,
		Firings: res.Firings,
		Exports: res.Exports,
		Outputs: runtime.OutputValues(res),
	}
	s.eventBus.Publish(Event{
		Type: EventProcessFinished,
		Payload: map[string]interface{}{
			"process": name,
			"cycles":  res.Cycles,
			"firings": res.Firings,
			"exports": len(res.Exports),
		},
	})
	return report, nil
}

func (s *KnowledgeService) persist(ctx context.Context, k *loader.Knowledge, res *process.Result) error {
	records := make([]repository.ExportRecord, len(res.Exports))
	for i, ex := range res.Exports {
		records[i] = repository.ExportRecord{
			Process: res.Process,
			Rule:    ex.Rule,
			Retract: ex.Retract,
			Graph:   ex.Graph,
		}
	}
	if err := s.repo.AppendExports(ctx, records); err != nil {
		return fmt.Errorf("failed to log exports: %w", err)
	}
	if err := s.repo.SaveCanon(ctx, k.Name, k.KB.Graphs()); err != nil {
		return fmt.Errorf("failed to save canon: %w", err)
	}
	return nil
}

// ProjectionReport is the result of projecting one graph onto another
type ProjectionReport struct {
	Projection *domain.Graph
	Bindings   []kb.CorefVar
}

// Project parses target and filter as CGIF and projects filter onto target.
// A nil Projection means no projection exists. Types resolve against a copy
// of the loaded hierarchies when knowledge is loaded.
func (s *KnowledgeService) Project(target, filter string) (*ProjectionReport, error) {
	// the scratch KB owns a copy of the vocabulary, so types named only in
	// the request stay out of the loaded knowledge
	s.mu.Lock()
	var vocab *domain.Vocabulary
	if s.knowledge != nil {
		vocab = s.knowledge.KB.Vocabulary().Copy()
	}
	s.mu.Unlock()
	scratch := kb.New("projection", kb.WithLogger(s.logger), kb.WithVocabulary(vocab))

	tg, err := codec.ParseCGIF(target, scratch.Vocabulary())
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	fg, err := codec.ParseCGIF(filter, scratch.Vocabulary())
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	report := &ProjectionReport{Projection: algebra.Project(scratch.Vocabulary(), tg, fg, scratch)}
	for _, cv := range scratch.CorefVars() {
		report.Bindings = append(report.Bindings, cv)
	}
	s.metrics.Projection(projectionResult(report.Projection))
	return report, nil
}

func projectionResult(g *domain.Graph) string {
	if g == nil {
		return metrics.ResultMiss
	}
	return metrics.ResultMatch
}

// Canon returns copies of the graphs in the loaded knowledge base
func (s *KnowledgeService) Canon() ([]*domain.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.knowledge == nil {
		return nil, domain.StructuralError("canon", "no knowledge loaded")
	}
	return s.knowledge.KB.Graphs(), nil
}

// StoredCanons lists the names of the persisted canons
func (s *KnowledgeService) StoredCanons(ctx context.Context) ([]string, error) {
	if s.repo == nil {
		return nil, domain.StructuralError("stored canons", "no canon database configured")
	}
	return s.repo.ListCanons(ctx)
}

// StoredCanon returns a persisted canon by name
func (s *KnowledgeService) StoredCanon(ctx context.Context, name string) ([]*domain.Graph, error) {
	if s.repo == nil {
		return nil, domain.StructuralError("stored canon", "no canon database configured")
	}
	vocab := domain.NewVocabulary()
	if k := s.Knowledge(); k != nil {
		vocab = k.KB.Vocabulary()
	}
	return s.repo.LoadCanon(ctx, name, vocab)
}

// Render writes g in the configured format
func (s *KnowledgeService) Render(g *domain.Graph, w io.Writer) error {
	c, err := codec.New(s.opts.Format, s.opts.SuppressComments)
	if err != nil {
		return err
	}
	return c.Export(g, w)
}

func (s *KnowledgeService) onChange(ch kb.Change) {
	t := EventGraphAsserted
	if ch.Kind == kb.ChangeRetracted {
		t = EventGraphRetracted
	}
	s.eventBus.Publish(Event{
		Type:    t,
		Payload: map[string]string{"kb": ch.KB, "graph": codec.FormatCGIF(ch.Graph)},
	})
}

// ParseArgs reads command-line actuals: numbers and booleans keep their
// kind, everything else is a string (so "#x" is a marker and "*x" a
// variable).
func ParseArgs(args []string) []value.Value {
	vals := make([]value.Value, len(args))
	for i, a := range args {
		if n, err := strconv.ParseFloat(a, 64); err == nil {
			vals[i] = value.Number(n)
			continue
		}
		switch strings.ToLower(a) {
		case "true":
			vals[i] = value.Bool(true)
		case "false":
			vals[i] = value.Bool(false)
		default:
			vals[i] = value.String(a)
		}
	}
	return vals
}
