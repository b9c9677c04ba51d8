package configurator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"kilowatt-backend/internal/domain"
)

// Deps are the collaborators of a Wizard. Store and Logger may be nil.
type Deps struct {
	Catalog  CatalogSource
	Quotes   QuoteCreator
	Identity Identity
	Store    SelectionStore
	Logger   *zap.Logger
}

// Wizard is the quote configurator of one customer.
type Wizard struct {
	mu sync.Mutex

	source   CatalogSource
	quotes   QuoteCreator
	identity Identity
	store    SelectionStore
	log      *zap.Logger

	catalog *Catalog
	report  LoadReport
	loaded  bool

	step       Step
	mode       StartMode
	sel        domain.Selection
	message    *Message
	submitting bool

	// last deep link applied; the same pair is not applied twice
	intent intent

	// seq numbers selection changes under mu; saveMu orders the writes
	// and saved is the last seq written to the store
	seq    uint64
	saveMu sync.Mutex
	saved  uint64
}

type intent struct {
	preset string
	step   string
}

// persistJob is a selection change waiting to be written to the store.
// The zero value writes nothing.
type persistJob struct {
	seq   uint64
	sel   domain.Selection
	clear bool
}

// New returns a wizard on the first step with nothing selected. Call Mount
// to restore a persisted selection and Load to fetch the catalog.
func New(deps Deps) *Wizard {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Wizard{
		source:   deps.Catalog,
		quotes:   deps.Quotes,
		identity: deps.Identity,
		store:    deps.Store,
		log:      log.With(zap.String("component", "configurator")),
		catalog:  NewCatalog(nil, nil, nil),
		step:     StepPreset,
		sel:      domain.NewSelection(nil, nil),
	}
}

// Mount reads the persisted selection once. A selection holding at least
// one ID is restored and the start mode forced to custom.
func (w *Wizard) Mount(ctx context.Context) {
	if w.store == nil {
		return
	}
	sel, err := w.store.Load(ctx)
	if err != nil {
		w.log.Debug("selection store load", zap.Error(err))
		return
	}
	if sel.IsEmpty() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel = domain.NewSelection(sel.Products, sel.Services)
	w.mode = StartModeCustom
}

// Load fetches the catalog and swaps in the new snapshot. Navigation is not
// blocked while the fetch runs.
func (w *Wizard) Load(ctx context.Context) LoadReport {
	if w.source == nil {
		return LoadReport{}
	}
	cat, report := LoadCatalog(ctx, w.source, w.log)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.catalog = cat
	w.report = report
	w.loaded = true
	return report
}

// Catalog returns the current snapshot.
func (w *Wizard) Catalog() *Catalog {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.catalog
}

// ResolveInitialIntent applies a deep link after the catalog has loaded. A
// known preset slug selects that preset, a valid step name is jumped to
// without the advance guard. Unknown values are ignored. A request without
// preset and step leaves any later deep link pending, and the same pair is
// applied only once so repeated requests do not undo the customer's edits.
func (w *Wizard) ResolveInitialIntent(ctx context.Context, presetSlug, stepName string) {
	if presetSlug == "" && stepName == "" {
		return
	}
	in := intent{preset: presetSlug, step: stepName}

	w.mu.Lock()
	if !w.loaded || w.intent == in {
		w.mu.Unlock()
		return
	}
	w.intent = in

	var job persistJob
	if presetSlug != "" {
		if p, ok := w.catalog.PackageBySlug(presetSlug); ok {
			job = w.applyPreset(p)
		} else {
			w.log.Debug("deep link preset not found", zap.String("preset", presetSlug))
		}
	}
	if stepName != "" {
		if st, ok := ParseStep(stepName); ok {
			if j := w.jumpTo(st); j.seq != 0 {
				job = j
			}
		}
	}
	w.mu.Unlock()
	w.persist(ctx, job)
}

// Advance moves to the next step. It does nothing on the last step, and on
// the first step until a start mode has been chosen.
func (w *Wizard) Advance() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepPreset && w.mode == StartModeNone {
		return
	}
	if i := w.step.Index(); i < len(StepOrder)-1 {
		w.step = StepOrder[i+1]
	}
}

// Retreat moves to the previous step, doing nothing on the first one.
func (w *Wizard) Retreat() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := w.step.Index(); i > 0 {
		w.step = StepOrder[i-1]
	}
}

// JumpTo activates any step. Leaving the first step with no start mode
// starts a custom quote with an empty selection.
func (w *Wizard) JumpTo(ctx context.Context, step Step) error {
	if step.Index() < 0 {
		return ErrUnknownStep
	}
	w.mu.Lock()
	job := w.jumpTo(step)
	w.mu.Unlock()
	w.persist(ctx, job)
	return nil
}

func (w *Wizard) jumpTo(step Step) persistJob {
	var job persistJob
	if step != StepPreset && w.mode == StartModeNone {
		w.mode = StartModeCustom
		job = w.setSelection(domain.NewSelection(nil, nil))
	}
	w.step = step
	return job
}

// SelectPreset replaces the whole selection with the package contents.
func (w *Wizard) SelectPreset(ctx context.Context, slug string) error {
	w.mu.Lock()
	p, ok := w.catalog.PackageBySlug(slug)
	if !ok {
		w.mu.Unlock()
		return ErrUnknownPreset
	}
	job := w.applyPreset(p)
	w.mu.Unlock()
	w.persist(ctx, job)
	return nil
}

func (w *Wizard) applyPreset(p domain.PackagePreset) persistJob {
	w.mode = StartModePreset
	return w.setSelection(domain.NewSelection(p.ProductIDs, p.ServiceIDs))
}

// StartCustom begins from an empty selection, optionally moving straight to
// the hardware step.
func (w *Wizard) StartCustom(ctx context.Context, jumpToHardware bool) {
	w.mu.Lock()
	w.mode = StartModeCustom
	job := w.setSelection(domain.NewSelection(nil, nil))
	if jumpToHardware {
		w.jumpTo(StepHardware)
	}
	w.mu.Unlock()
	w.persist(ctx, job)
}

// Reset returns to the first step with nothing chosen and forgets the
// persisted selection.
func (w *Wizard) Reset(ctx context.Context) {
	w.mu.Lock()
	w.step = StepPreset
	w.mode = StartModeNone
	w.message = nil
	job := w.setSelection(domain.NewSelection(nil, nil))
	job.clear = true
	w.mu.Unlock()
	w.persist(ctx, job)
}

// ToggleProduct flips one product, keeping one product per category.
func (w *Wizard) ToggleProduct(ctx context.Context, id string) {
	w.mu.Lock()
	job := w.setSelection(ApplyProductToggle(w.sel, w.catalog, id))
	w.mu.Unlock()
	w.persist(ctx, job)
}

// ToggleService flips one digital service.
func (w *Wizard) ToggleService(ctx context.Context, id string) {
	w.mu.Lock()
	job := w.setSelection(ApplyServiceToggle(w.sel, id))
	w.mu.Unlock()
	w.persist(ctx, job)
}

// setSelection swaps in the new selection and returns the write to run once
// w.mu is released. Callers hold w.mu.
func (w *Wizard) setSelection(sel domain.Selection) persistJob {
	w.sel = sel
	w.seq++
	return persistJob{seq: w.seq, sel: sel.Clone()}
}

// persist writes a selection change without holding w.mu, so a slow or
// broken store never blocks the wizard. Writes are serialized and one that
// lost the race to a newer change is dropped.
func (w *Wizard) persist(ctx context.Context, job persistJob) {
	if w.store == nil || job.seq == 0 {
		return
	}
	w.saveMu.Lock()
	defer w.saveMu.Unlock()
	if job.seq <= w.saved {
		return
	}
	w.saved = job.seq

	if job.clear {
		if err := w.store.Clear(ctx); err != nil {
			w.log.Debug("selection store clear", zap.Error(err))
		}
		return
	}
	if err := w.store.Save(ctx, job.sel); err != nil {
		w.log.Debug("selection store save", zap.Error(err))
	}
}

// State is a snapshot of the wizard for rendering.
type State struct {
	Step        Step             `json:"step"`
	StepIndex   int              `json:"stepIndex"`
	StartMode   StartMode        `json:"startMode"`
	Selection   domain.Selection `json:"selection"`
	Total       float64          `json:"total"`
	Message     *Message         `json:"message,omitempty"`
	Submitting  bool             `json:"submitting"`
	Loaded      bool             `json:"loaded"`
	Unavailable []string         `json:"unavailable"`
}

// State returns a copy of the current state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	var msg *Message
	if w.message != nil {
		m := *w.message
		msg = &m
	}
	return State{
		Step:        w.step,
		StepIndex:   w.step.Index(),
		StartMode:   w.mode,
		Selection:   w.sel.Clone(),
		Total:       Total(w.sel, w.catalog),
		Message:     msg,
		Submitting:  w.submitting,
		Loaded:      w.loaded,
		Unavailable: w.report.Unavailable(),
	}
}

// Summary resolves the current selection against the catalog.
func (w *Wizard) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return BuildSummary(w.sel, w.catalog)
}
