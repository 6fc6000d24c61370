package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/skillfit/internal/audit"
	"github.com/spigell/skillfit/internal/bias"
	"github.com/spigell/skillfit/internal/explain"
	"github.com/spigell/skillfit/internal/logger"
	"github.com/spigell/skillfit/internal/matcher"
	"github.com/spigell/skillfit/internal/scoring"
	"github.com/spigell/skillfit/internal/semantic"
	"github.com/spigell/skillfit/internal/whatif"
)

// JDRoleName names the role built from a job description when no roles are
// requested.
const JDRoleName = "Job Description"

const resumePreviewLength = 80

// Engine owns the matching state shared by all evaluations. It is safe for
// concurrent use once built.
type Engine struct {
	cfg      Config
	catalog  []string
	roles    *scoring.Table
	searcher semantic.Searcher
	noIndex  bool
	topK     int
	matcher  *matcher.Matcher
	adjuster *bias.Adjuster
	analyzer *whatif.Analyzer
	store    audit.Store
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Engine)

// WithRoles replaces the built-in role table.
func WithRoles(t *scoring.Table) Option {
	return func(e *Engine) {
		if t != nil {
			e.roles = t
		}
	}
}

// WithSearcher sets the semantic searcher used by the matcher. The default
// is a TF-IDF index over the catalog.
func WithSearcher(s semantic.Searcher) Option {
	return func(e *Engine) {
		e.searcher = s
	}
}

// WithTopK sets how many semantic hits the matcher asks for.
func WithTopK(k int) Option {
	return func(e *Engine) {
		e.topK = k
	}
}

// WithoutSemantic turns the semantic pass off.
func WithoutSemantic() Option {
	return func(e *Engine) {
		e.noIndex = true
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStore records a decision trace for every evaluation.
func WithStore(s audit.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine validates cfg and builds the matcher over catalog.
func NewEngine(catalog []string, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	e := &Engine{
		cfg:     cfg,
		catalog: catalog,
		roles:   scoring.DefaultTable(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	matcherOpts := []matcher.Option{matcher.WithLogger(e.logger), matcher.WithTopK(e.topK)}
	switch {
	case e.noIndex:
	case e.searcher != nil:
		matcherOpts = append(matcherOpts, matcher.WithSearcher(e.searcher))
	default:
		matcherOpts = append(matcherOpts, matcher.WithSearcher(semantic.Build(catalog)))
	}

	e.matcher = matcher.New(catalog, matcherOpts...)
	e.adjuster = bias.NewAdjuster(cfg.Bias)
	e.analyzer = whatif.New(whatif.WithParallelism(cfg.Parallelism))

	return e, nil
}

// Roles returns the role table the engine resolves names against.
func (e *Engine) Roles() *scoring.Table { return e.roles }

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Stages describes the stage list as configured.
func (e *Engine) Stages() []Status {
	return Describe(e.stages())
}

// Extract runs the matcher over text with the configured policy.
func (e *Engine) Extract(ctx context.Context, text string) matcher.Extraction {
	return matcher.ExtractSkills(ctx, e.matcher, text, e.cfg.Extraction)
}

// Request is a single evaluation request. JDText is optional.
type Request struct {
	ResumeText string
	Roles      []string
	JDText     string
}

// Evaluate scores the resume against the requested roles and runs the stage
// list for the best one. Bad input yields a degenerate outcome; errors are
// reserved for cancellation and stage failures.
func (e *Engine) Evaluate(ctx context.Context, req Request) (*Outcome, error) {
	if strings.TrimSpace(req.ResumeText) == "" {
		e.logger.Info("degenerate evaluation", zap.String("reason", ReasonEmptyResume))
		return degenerate(ReasonEmptyResume, nil), nil
	}

	profiles, unknown := e.resolve(req.Roles)

	var jd *matcher.JDProfile
	if strings.TrimSpace(req.JDText) != "" {
		profile := e.cfg.Extraction.Profile(e.Extract(ctx, req.JDText))
		jd = &profile
		if len(req.Roles) == 0 && profile.All().Len() > 0 {
			profiles = append(profiles, scoring.RoleProfile{Name: JDRoleName, Skills: profile.All()})
		}
	}

	if len(profiles) == 0 {
		e.logger.Info("degenerate evaluation",
			zap.String("reason", ReasonNoRoles),
			zap.Strings("unknown_roles", unknown),
		)
		return degenerate(ReasonNoRoles, unknown), nil
	}

	resume := e.Extract(ctx, req.ResumeText)
	reports := Compare(resume.Skills, profiles, e.cfg.Parallelism)
	best := profileByName(profiles, reports[0].Role)

	log := logger.WithFields(e.logger, logger.EvaluationFields(best.Name, "")...)
	log.Debug("resume skills extracted",
		zap.String("resume_preview", logger.TruncateForLog(req.ResumeText, resumePreviewLength)),
		zap.Int("count", resume.Skills.Len()),
		zap.Strings("skills", resume.Skills.Sorted()),
	)

	ev := &Evaluation{Role: best, Resume: resume.Skills, JD: jd}
	deps := Deps{Logger: log, Adjuster: e.adjuster, Analyzer: e.analyzer}
	if err := Run(ctx, &e.cfg, deps, e.stages(), ev); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", best.Name, err)
	}

	extracted := make([]string, 0, len(resume.Records))
	for _, rec := range resume.Records {
		extracted = append(extracted, rec.Skill)
	}
	ev.record(bias.Diagnose(extracted, reports))

	out := &Outcome{
		Role:          best.Name,
		Score:         ev.Report.Score,
		AdjustedScore: ev.AdjustedScore(),
		Matched:       ev.Report.Matched,
		Missing:       ev.Report.Missing,
		Narrative:     ev.Explanation.Narrative,
		Summary:       explain.RunSummary(ev.Report.Score, ev.Report.Matched, ev.Report.Missing),
		Comparison:    reports,
		UnknownRoles:  unknown,
		Decision:      ev.FinalDecision(),
		Results:       ev.Results,
	}

	if e.store != nil {
		e.persist(ctx, log, req, ev, out)
	}

	return out, nil
}

func (e *Engine) persist(ctx context.Context, log *zap.Logger, req Request, ev *Evaluation, out *Outcome) {
	trace := audit.NewTrace(audit.Decision{
		ResumeText:    req.ResumeText,
		JDText:        req.JDText,
		Role:          out.Role,
		BaseScore:     out.Score,
		AdjustedScore: out.AdjustedScore,
		RiskBand:      string(ev.Calibration.Band),
		Matched:       out.Matched,
		Missing:       out.Missing,
		BiasFlags:     ev.Bias.Flags,
		FinalDecision: out.Decision,
		Explanation:   out.Narrative,
	}, e.now())

	log = log.With(zap.String(logger.FieldDecisionID, trace.DecisionID))
	if err := e.store.Append(ctx, trace); err != nil {
		log.Warn("failed to record decision trace", zap.Error(err))
		return
	}

	out.DecisionID = trace.DecisionID
	out.Persisted = true
	log.Info("decision recorded", zap.String("decision", out.Decision))
}

func (e *Engine) resolve(names []string) ([]scoring.RoleProfile, []string) {
	var (
		profiles []scoring.RoleProfile
		unknown  []string
	)
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		role, ok := e.roles.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if _, dup := seen[role.Name]; dup {
			continue
		}
		if role.Skills.Len() == 0 {
			e.logger.Debug("skipping role without skills", zap.String(logger.FieldRole, role.Name))
			continue
		}
		seen[role.Name] = struct{}{}
		profiles = append(profiles, role)
	}
	return profiles, unknown
}

func (e *Engine) stages() []Stage {
	return ConfiguredStages(e.cfg)
}

// ConfiguredStages returns the default stages with the ones cfg names
// disabled.
func ConfiguredStages(cfg Config) []Stage {
	stages := DefaultStages()
	for _, name := range cfg.Disabled {
		DisableByName(stages, strings.ToLower(strings.TrimSpace(name)), "disabled by configuration")
	}
	return stages
}

func profileByName(profiles []scoring.RoleProfile, name string) scoring.RoleProfile {
	for _, p := range profiles {
		if p.Name == name {
			return p
		}
	}
	return profiles[0]
}
