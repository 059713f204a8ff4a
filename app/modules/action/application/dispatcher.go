package actionservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	actiondomain "github.com/Black-And-White-Club/marathon-manager/app/modules/action/domain"
	scheduledomain "github.com/Black-And-White-Club/marathon-manager/app/modules/schedule/domain"
	settingsdomain "github.com/Black-And-White-Club/marathon-manager/app/modules/settings/domain"
	twitchclient "github.com/Black-And-White-Club/marathon-manager/app/modules/twitch/infrastructure/client"
	"github.com/Black-And-White-Club/marathon-manager/app/eventbus"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/attr"
	"github.com/Black-And-White-Club/marathon-manager/app/shared/metrics"
	"github.com/Black-And-White-Club/marathon-manager/pkg/obsws"
	"github.com/Black-And-White-Club/marathon-manager/pkg/textgen"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Broadcaster applies OBS requests in one batch.
type Broadcaster interface {
	SendBatch(ctx context.Context, requests []obsws.Request) (*obsws.BatchResult, error)
}

// CommandUpdater replaces a chat command's text.
type CommandUpdater interface {
	UpdateCommand(ctx context.Context, id, message string) error
}

// ChannelEditor edits the channel title and category.
type ChannelEditor interface {
	FindGame(ctx context.Context, name string) (twitchclient.Game, bool, error)
	UpdateTitle(ctx context.Context, title string) error
	UpdateGame(ctx context.Context, gameID string) error
}

// ConfigurationSource supplies the role bindings, title template and
// multi-viewer URL.
type ConfigurationSource interface {
	Configuration() settingsdomain.Configuration
}

// FileExporter writes export files for a run.
type FileExporter interface {
	Export(ctx context.Context, files []actiondomain.ExportFile, destination string, run textgen.Source) error
}

// ExportFileSource lists the global export files.
type ExportFileSource interface {
	ExportFiles() []actiondomain.ExportFile
}

// Notifier shows an outcome to the operator.
type Notifier interface {
	Notify(ctx context.Context, n eventbus.Notification) error
}

// Integrations are the external systems the dispatcher drives. A nil
// integration fails its modules with ErrIntegrationUnavailable.
type Integrations struct {
	OBS      Broadcaster
	Nightbot CommandUpdater
	Twitch   ChannelEditor
	Config   ConfigurationSource
	Exporter FileExporter
}

// Dispatcher fans action modules out to the integrations.
type Dispatcher struct {
	integrations Integrations
	files        ExportFileSource
	engine       *textgen.Engine
	notifier     Notifier
	logger       *slog.Logger
	metrics      metrics.DispatchMetrics
	tracer       trace.Tracer
	now          func() time.Time
}

func NewDispatcher(
	integrations Integrations,
	files ExportFileSource,
	engine *textgen.Engine,
	notifier Notifier,
	logger *slog.Logger,
	m metrics.DispatchMetrics,
	tracer trace.Tracer,
) *Dispatcher {
	if engine == nil {
		engine = textgen.New()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("dispatcher")
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		integrations: integrations,
		files:        files,
		engine:       engine,
		notifier:     notifier,
		logger:       logger,
		metrics:      m,
		tracer:       tracer,
		now:          time.Now,
	}
}

type indexed struct {
	index  int
	module actiondomain.ActionModule
}

// Execute runs the enabled modules against run. Each family runs in its own
// goroutine; a failing or panicking module never stops its siblings. Every
// outcome is notified individually and collected in the returned Report.
func (d *Dispatcher) Execute(ctx context.Context, modules []actiondomain.ActionModule, run scheduledomain.Run) *Report {
	ctx, span := d.tracer.Start(ctx, "Dispatcher.Execute", trace.WithAttributes(
		attribute.String("run_id", run.ID),
		attribute.Int("modules", len(modules)),
	))
	defer span.End()

	report := &Report{RunID: run.ID}
	families := map[actiondomain.ActionType][]indexed{}
	for i, m := range modules {
		if !m.IsEnabled {
			continue
		}
		if err := m.Validate(); err != nil {
			d.record(ctx, report, run, Outcome{Index: i, Action: m.Action, Component: m.Component(), Err: err})
			continue
		}
		families[m.Action] = append(families[m.Action], indexed{index: i, module: m})
	}

	runners := map[actiondomain.ActionType]func(context.Context, []indexed, scheduledomain.Run, *Report){
		actiondomain.ActionOBS:         d.runOBS,
		actiondomain.ActionNightbot:    d.runNightbot,
		actiondomain.ActionTwitch:      d.runTwitch,
		actiondomain.ActionExportFiles: d.runExportFiles,
	}

	var wg sync.WaitGroup
	for action, mods := range families {
		run := run.Clone()
		runFamily := runners[action]
		wg.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					d.logger.ErrorContext(ctx, "Action family panicked",
						attr.ExtractCorrelationID(ctx),
						attr.String("action", string(action)),
						attr.Any("panic", r),
					)
					for _, m := range mods {
						d.record(ctx, report, run, Outcome{
							Index:     m.index,
							Action:    action,
							Component: m.module.Component(),
							Err:       fmt.Errorf("%w: %v", ErrActionPanicked, r),
						})
					}
				}
			}()
			runFamily(ctx, mods, run, report)
		})
	}
	wg.Wait()

	report.sort()
	if err := report.Err(); err != nil {
		span.RecordError(err)
	}
	return report
}

// record stores o in the report and notifies the operator. Skips are only
// logged.
func (d *Dispatcher) record(ctx context.Context, report *Report, run scheduledomain.Run, o Outcome) {
	// A panicking family may already have recorded some of its modules.
	if o.Err != nil && errors.Is(o.Err, ErrActionPanicked) && report.has(o.Index) {
		return
	}
	report.add(o)

	attrs := []any{
		attr.ExtractCorrelationID(ctx),
		attr.RunID(run.ID),
		attr.String("action", string(o.Action)),
		attr.String("component", string(o.Component)),
		attr.String("target", o.Target),
	}
	if o.Skipped {
		d.logger.InfoContext(ctx, "Action module skipped", append(attrs, attr.String("reason", o.Reason))...)
		return
	}

	d.metrics.RecordActionOutcome(ctx, string(o.Action), string(o.Component), o.Err == nil)

	n := eventbus.Notification{
		ID:          uuid.NewString(),
		Level:       eventbus.LevelSuccess,
		Integration: string(o.Action),
		Component:   string(o.Component),
		RunID:       run.ID,
		Message:     o.Message(),
		At:          d.now().UTC(),
	}
	if o.Err != nil {
		n.Level = eventbus.LevelError
		n.Error = o.Err.Error()
		d.logger.WarnContext(ctx, "Action module failed", append(attrs, attr.Error(o.Err))...)
	} else {
		d.logger.InfoContext(ctx, "Action module succeeded", attrs...)
	}

	if d.notifier == nil {
		return
	}
	if err := d.notifier.Notify(ctx, n); err != nil {
		d.logger.ErrorContext(ctx, "Failed to publish action notification", append(attrs, attr.Error(err))...)
	}
}

func (r *Report) has(index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.Outcomes {
		if o.Index == index {
			return true
		}
	}
	return false
}

func (d *Dispatcher) configuration() settingsdomain.Configuration {
	if d.integrations.Config == nil {
		return settingsdomain.DefaultConfiguration()
	}
	return d.integrations.Config.Configuration()
}

// runOBS sends one batch covering every OBS module, in module order.
func (d *Dispatcher) runOBS(ctx context.Context, mods []indexed, run scheduledomain.Run, report *Report) {
	cfg := d.configuration()

	var requests []obsws.Request
	var sent []Outcome
	for _, m := range mods {
		a := m.module.OBS
		o := Outcome{Index: m.index, Action: actiondomain.ActionOBS, Component: a.Component}

		switch a.Component {
		case actiondomain.ComponentSetBrowserSource:
			if a.ResourceName == "" {
				o.Skipped, o.Reason = true, "no browser source name"
				d.record(ctx, report, run, o)
				continue
			}
			url := cfg.BrowserURL(firstRunnerChannel(run))
			if a.Value != "" {
				url = d.engine.Generate(a.Value, run, 0)
			}
			o.Target = a.ResourceName
			requests = append(requests, obsws.Request{
				RequestType: "SetInputSettings",
				RequestData: map[string]any{
					"inputName":     a.ResourceName,
					"inputSettings": map[string]any{"url": url},
				},
			})
		case actiondomain.ComponentChangeScene:
			if a.Value == "" {
				o.Skipped, o.Reason = true, "no scene name"
				d.record(ctx, report, run, o)
				continue
			}
			o.Target = a.Value
			requests = append(requests, obsws.Request{
				RequestType: "SetCurrentProgramScene",
				RequestData: map[string]any{"sceneName": a.Value},
			})
		}
		sent = append(sent, o)
	}

	if len(requests) == 0 {
		return
	}
	if d.integrations.OBS == nil {
		for _, o := range sent {
			o.Err = fmt.Errorf("%w: obs", ErrIntegrationUnavailable)
			d.record(ctx, report, run, o)
		}
		return
	}

	result, err := d.integrations.OBS.SendBatch(ctx, requests)
	// A batch cut short still reports the requests OBS already answered.
	answered := 0
	if result != nil {
		answered = min(len(result.Results), len(requests))
	}
	for i, o := range sent {
		switch {
		case i < answered:
			if r := result.Results[i]; !r.Success {
				o.Err = &obsws.RequestError{RequestType: r.RequestType, Code: r.Code, Comment: r.Comment}
			}
		case err != nil:
			o.Err = err
		}
		d.record(ctx, report, run, o)
	}
}

func firstRunnerChannel(run scheduledomain.Run) string {
	if len(run.Runners) == 0 {
		return ""
	}
	return run.Runners[0].Channel()
}

// runNightbot updates each role's command. A failing command does not stop
// the next one.
func (d *Dispatcher) runNightbot(ctx context.Context, mods []indexed, run scheduledomain.Run, report *Report) {
	cfg := d.configuration()

	for _, m := range mods {
		a := m.module.Nightbot
		o := Outcome{Index: m.index, Action: actiondomain.ActionNightbot, Component: a.Component, Target: a.ConfigurationCommandField}

		binding, err := cfg.Nightbot.For(a.ConfigurationCommandField)
		if err != nil {
			o.Err = err
			d.record(ctx, report, run, o)
			continue
		}
		members := run.Members(scheduledomain.Role(a.ConfigurationCommandField))
		switch {
		case binding.CommandID == "":
			o.Skipped, o.Reason = true, "no command bound to "+a.ConfigurationCommandField
		case len(members) == 0:
			o.Skipped, o.Reason = true, "run has no "+a.ConfigurationCommandField
		case d.integrations.Nightbot == nil:
			o.Err = fmt.Errorf("%w: nightbot", ErrIntegrationUnavailable)
		default:
			template := a.Template
			if template == "" {
				template = roleText(binding, members)
			}
			o.Err = d.integrations.Nightbot.UpdateCommand(ctx, binding.CommandID, d.engine.Generate(template, run, 0))
		}
		d.record(ctx, report, run, o)
	}
}

// roleText is the singular text and link for one member, or the plural text
// followed by every member link joined with " | ".
func roleText(binding settingsdomain.RoleBinding, members []scheduledomain.Member) string {
	var links []string
	for _, m := range members {
		if link := m.LinkURL(); link != "" {
			links = append(links, link)
		}
	}

	text := binding.Plural
	if len(members) == 1 {
		text = binding.Singular
	}
	if len(links) == 0 {
		return text
	}
	return strings.TrimSpace(text + " " + strings.Join(links, " | "))
}

// runTwitch applies title then game updates in module order.
func (d *Dispatcher) runTwitch(ctx context.Context, mods []indexed, run scheduledomain.Run, report *Report) {
	cfg := d.configuration()

	for _, m := range mods {
		a := m.module.Twitch
		o := Outcome{Index: m.index, Action: actiondomain.ActionTwitch, Component: a.Component}
		if d.integrations.Twitch == nil {
			o.Err = fmt.Errorf("%w: twitch", ErrIntegrationUnavailable)
			d.record(ctx, report, run, o)
			continue
		}

		switch a.Component {
		case actiondomain.ComponentUpdateTitle:
			template := firstNonEmpty(run.SEOTitle, a.Value, cfg.TitleTemplate)
			title := d.engine.Generate(template, run, 0)
			o.Target = title
			if strings.TrimSpace(title) == "" {
				o.Skipped, o.Reason = true, "title rendered empty"
				break
			}
			o.Err = d.integrations.Twitch.UpdateTitle(ctx, title)
		case actiondomain.ComponentUpdateGame:
			name := firstNonEmpty(run.SEOGame, run.Game)
			o.Target = name
			if name == "" {
				o.Skipped, o.Reason = true, "run has no game"
				break
			}
			game, found, err := d.integrations.Twitch.FindGame(ctx, name)
			switch {
			case err != nil:
				o.Err = err
			case !found:
				o.Skipped, o.Reason = true, "no twitch category named "+name
			default:
				o.Err = d.integrations.Twitch.UpdateGame(ctx, game.ID)
			}
		}
		d.record(ctx, report, run, o)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// runExportFiles writes the export files once per module destination.
func (d *Dispatcher) runExportFiles(ctx context.Context, mods []indexed, run scheduledomain.Run, report *Report) {
	var files []actiondomain.ExportFile
	if d.files != nil {
		files = d.files.ExportFiles()
	}

	for _, m := range mods {
		a := m.module.ExportFiles
		o := Outcome{Index: m.index, Action: actiondomain.ActionExportFiles, Component: a.Component, Target: a.Value}
		switch {
		case d.integrations.Exporter == nil:
			o.Err = fmt.Errorf("%w: exporter", ErrIntegrationUnavailable)
		case len(files) == 0:
			o.Skipped, o.Reason = true, "no export files configured"
		default:
			o.Err = d.integrations.Exporter.Export(ctx, files, a.Value, run)
		}
		d.record(ctx, report, run, o)
	}
}
