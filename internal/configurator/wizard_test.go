package configurator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"kilowatt-backend/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewWizardStartsEmpty(t *testing.T) {
	w := newLoadedWizard(&fakeStore{}, nil, "")
	st := w.State()
	assert.Equal(t, StepPreset, st.Step)
	assert.Equal(t, 0, st.StepIndex)
	assert.Equal(t, StartModeNone, st.StartMode)
	assert.True(t, st.Selection.IsEmpty())
	assert.Zero(t, st.Total)
	assert.True(t, st.Loaded)
	assert.Empty(t, st.Unavailable)
}

func TestMountRestoresPersistedSelection(t *testing.T) {
	sel := domain.NewSelection([]string{"A"}, nil)
	store := &fakeStore{saved: &sel}

	w := newLoadedWizard(store, nil, "")
	st := w.State()
	assert.Equal(t, StepPreset, st.Step)
	assert.Equal(t, StartModeCustom, st.StartMode)
	assert.Equal(t, []string{"A"}, st.Selection.Products)
	assert.Equal(t, 80.0, st.Total)

	// restored mode lifts the advance guard
	w.Advance()
	assert.Equal(t, StepHardware, w.State().Step)
}

func TestMountIgnoresEmptyOrFailingStore(t *testing.T) {
	empty := domain.NewSelection(nil, nil)
	for name, store := range map[string]*fakeStore{
		"empty":   {saved: &empty},
		"failing": {failing: true},
	} {
		t.Run(name, func(t *testing.T) {
			w := newLoadedWizard(store, nil, "")
			assert.Equal(t, StartModeNone, w.State().StartMode)
		})
	}
}

func TestAdvanceGuard(t *testing.T) {
	w := newLoadedWizard(&fakeStore{}, nil, "")
	w.Advance()
	assert.Equal(t, StepPreset, w.State().Step)

	w.StartCustom(context.Background(), false)
	w.Advance()
	w.Advance()
	w.Advance()
	assert.Equal(t, StepSummary, w.State().Step)
	w.Advance()
	assert.Equal(t, StepSummary, w.State().Step)
}

func TestRetreat(t *testing.T) {
	w := newLoadedWizard(&fakeStore{}, nil, "")
	w.Retreat()
	assert.Equal(t, StepPreset, w.State().Step)

	require.NoError(t, w.JumpTo(context.Background(), StepSummary))
	w.Retreat()
	assert.Equal(t, StepDigital, w.State().Step)
	w.Retreat()
	w.Retreat()
	w.Retreat()
	assert.Equal(t, StepPreset, w.State().Step)
}

func TestJumpToStartsCustomImplicitly(t *testing.T) {
	store := &fakeStore{}
	w := newLoadedWizard(store, nil, "")
	ctx := context.Background()

	require.NoError(t, w.JumpTo(ctx, StepDigital))
	st := w.State()
	assert.Equal(t, StepDigital, st.Step)
	assert.Equal(t, StartModeCustom, st.StartMode)
	assert.True(t, st.Selection.IsEmpty())
	assert.Equal(t, 1, store.saves)

	// with a mode already chosen the selection is kept
	w.ToggleProduct(ctx, "A")
	require.NoError(t, w.JumpTo(ctx, StepPreset))
	require.NoError(t, w.JumpTo(ctx, StepSummary))
	assert.Equal(t, []string{"A"}, w.State().Selection.Products)

	assert.ErrorIs(t, w.JumpTo(ctx, Step("checkout")), ErrUnknownStep)
	assert.Equal(t, StepSummary, w.State().Step)
}

func TestJumpToPresetKeepsModeUnset(t *testing.T) {
	w := newLoadedWizard(&fakeStore{}, nil, "")
	require.NoError(t, w.JumpTo(context.Background(), StepPreset))
	assert.Equal(t, StartModeNone, w.State().StartMode)
}

func TestSelectPresetReplacesSelection(t *testing.T) {
	store := &fakeStore{}
	w := newLoadedWizard(store, nil, "")
	ctx := context.Background()

	w.StartCustom(ctx, false)
	w.ToggleProduct(ctx, "L")
	w.ToggleService(ctx, "S2")

	require.NoError(t, w.SelectPreset(ctx, "starter"))
	st := w.State()
	assert.Equal(t, StartModePreset, st.StartMode)
	assert.Equal(t, domain.NewSelection([]string{"A", "C"}, []string{"S1"}), st.Selection)
	assert.Equal(t, StepPreset, st.Step)
	require.NotNil(t, store.saved)
	assert.Equal(t, st.Selection, *store.saved)

	assert.ErrorIs(t, w.SelectPreset(ctx, "nope"), ErrUnknownPreset)
	assert.Equal(t, st.Selection, w.State().Selection)
}

func TestStartCustom(t *testing.T) {
	w := newLoadedWizard(&fakeStore{}, nil, "")
	ctx := context.Background()
	require.NoError(t, w.SelectPreset(ctx, "starter"))

	w.StartCustom(ctx, true)
	st := w.State()
	assert.Equal(t, StartModeCustom, st.StartMode)
	assert.Equal(t, StepHardware, st.Step)
	assert.True(t, st.Selection.IsEmpty())

	w.Reset(ctx)
	w.StartCustom(ctx, false)
	assert.Equal(t, StepPreset, w.State().Step)
}

func TestTogglesPersistAfterMutation(t *testing.T) {
	store := &fakeStore{}
	w := newLoadedWizard(store, nil, "")
	ctx := context.Background()

	w.ToggleProduct(ctx, "A")
	w.ToggleProduct(ctx, "B")
	w.ToggleService(ctx, "S1")
	assert.Equal(t, 3, store.saves)
	require.NotNil(t, store.saved)
	assert.Equal(t, domain.NewSelection([]string{"B"}, []string{"S1"}), *store.saved)
	assert.Equal(t, 110.0, w.State().Total)
}

func TestWizardScenarioTotals(t *testing.T) {
	w := newLoadedWizard(&fakeStore{}, nil, "")
	ctx := context.Background()
	w.StartCustom(ctx, true)

	for _, step := range []struct {
		toggle func()
		want   float64
	}{
		{func() { w.ToggleProduct(ctx, "A") }, 80},
		{func() { w.ToggleProduct(ctx, "B") }, 60},
		{func() { w.ToggleProduct(ctx, "C") }, 160},
		{func() { w.ToggleService(ctx, "S1") }, 210},
	} {
		step.toggle()
		assert.Equal(t, step.want, w.State().Total)
	}
}

func TestResetClearsEverything(t *testing.T) {
	store := &fakeStore{}
	w := newLoadedWizard(store, &fakeQuotes{id: "q-1"}, "u-1")
	ctx := context.Background()

	require.NoError(t, w.SelectPreset(ctx, "starter"))
	require.NoError(t, w.JumpTo(ctx, StepSummary))
	_, err := w.Submit(ctx)
	require.NoError(t, err)
	require.NotNil(t, w.State().Message)

	w.Reset(ctx)
	st := w.State()
	assert.Equal(t, StepPreset, st.Step)
	assert.Equal(t, StartModeNone, st.StartMode)
	assert.True(t, st.Selection.IsEmpty())
	assert.Nil(t, st.Message)
	assert.Equal(t, 1, store.clears)
	assert.Nil(t, store.saved)
}

func TestResetProperty(t *testing.T) {
	ctx := context.Background()
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("reset always lands on an empty first step", prop.ForAll(
		func(ops []int) bool {
			w := newLoadedWizard(&fakeStore{}, nil, "")
			for _, op := range ops {
				switch op {
				case 0:
					w.Advance()
				case 1:
					w.Retreat()
				case 2:
					_ = w.JumpTo(ctx, StepOrder[len(ops)%len(StepOrder)])
				case 3:
					_ = w.SelectPreset(ctx, "starter")
				case 4:
					w.StartCustom(ctx, len(ops)%2 == 0)
				case 5:
					w.ToggleProduct(ctx, productIDs[len(ops)%len(productIDs)])
				case 6:
					w.ToggleService(ctx, serviceIDs[len(ops)%len(serviceIDs)])
				}
			}
			w.Reset(ctx)
			st := w.State()
			return st.Step == StepPreset && st.StartMode == StartModeNone &&
				st.Selection.IsEmpty() && st.Message == nil && st.Total == 0
		},
		gen.SliceOf(gen.IntRange(0, 6)),
	))

	properties.TestingRun(t)
}

func TestPersistenceFailureIsIgnored(t *testing.T) {
	store := &fakeStore{failing: true}
	w := newLoadedWizard(store, nil, "")
	ctx := context.Background()

	w.StartCustom(ctx, true)
	w.ToggleProduct(ctx, "A")
	w.ToggleService(ctx, "S2")
	w.Reset(ctx)
	require.NoError(t, w.SelectPreset(ctx, "lights"))

	st := w.State()
	assert.Equal(t, []string{"L"}, st.Selection.Products)
	assert.Equal(t, 120.0, st.Total)
}

func TestSlowStoreDoesNotBlockWizard(t *testing.T) {
	store := &gatedStore{entered: make(chan struct{}), release: make(chan struct{})}
	w := New(Deps{Catalog: &fakeSource{}, Store: store})
	ctx := context.Background()
	w.Load(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.ToggleService(ctx, "S1")
	}()
	<-store.entered

	states := make(chan State, 1)
	go func() {
		w.Advance()
		states <- w.State()
	}()
	select {
	case st := <-states:
		assert.Equal(t, []string{"S1"}, st.Selection.Services)
		assert.Equal(t, 50.0, st.Total)
	case <-time.After(2 * time.Second):
		t.Fatal("State blocked behind a pending store write")
	}

	close(store.release)
	<-done
	assert.Equal(t, 1, store.saveCount())
}

func TestStaleWriteIsDropped(t *testing.T) {
	store := &fakeStore{}
	w := newLoadedWizard(store, nil, "")
	ctx := context.Background()

	w.ToggleProduct(ctx, "A")
	w.ToggleProduct(ctx, "C")
	require.NotNil(t, store.saved)

	// a write queued before the last one arrives late
	w.persist(ctx, persistJob{seq: 1, sel: domain.NewSelection([]string{"A"}, nil)})
	assert.Equal(t, 2, store.saves)
	assert.Equal(t, []string{"A", "C"}, store.saved.Products)

	w.Reset(ctx)
	w.persist(ctx, persistJob{seq: 2, sel: domain.NewSelection([]string{"B"}, nil)})
	assert.Nil(t, store.saved)
	assert.Equal(t, 1, store.clears)
}

func TestWizardWithoutStore(t *testing.T) {
	w := New(Deps{Catalog: &fakeSource{}})
	ctx := context.Background()
	w.Mount(ctx)
	w.Load(ctx)
	w.StartCustom(ctx, true)
	w.ToggleProduct(ctx, "C")
	w.Reset(ctx)
	assert.Equal(t, StepPreset, w.State().Step)
}

func TestDeepLinkScenario(t *testing.T) {
	w := newLoadedWizard(&fakeStore{}, nil, "")
	w.ResolveInitialIntent(context.Background(), "starter", "summary")

	want := State{
		Step:        StepSummary,
		StepIndex:   3,
		StartMode:   StartModePreset,
		Selection:   domain.NewSelection([]string{"A", "C"}, []string{"S1"}),
		Total:       230,
		Loaded:      true,
		Unavailable: []string{},
	}
	if diff := cmp.Diff(want, w.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestDeepLinkIgnoresUnknownValues(t *testing.T) {
	w := newLoadedWizard(&fakeStore{}, nil, "")
	w.ResolveInitialIntent(context.Background(), "ghost", "checkout")
	st := w.State()
	assert.Equal(t, StepPreset, st.Step)
	assert.Equal(t, StartModeNone, st.StartMode)
}

func TestDeepLinkStepOnly(t *testing.T) {
	w := newLoadedWizard(&fakeStore{}, nil, "")
	w.ResolveInitialIntent(context.Background(), "", "hardware")
	st := w.State()
	assert.Equal(t, StepHardware, st.Step)
	assert.Equal(t, StartModeCustom, st.StartMode)
}

func TestDeepLinkResolvesOnce(t *testing.T) {
	ctx := context.Background()
	w := New(Deps{Catalog: &fakeSource{}})

	// before the catalog arrives nothing happens and the intent stays pending
	w.ResolveInitialIntent(ctx, "starter", "digital")
	assert.Equal(t, StepPreset, w.State().Step)

	w.Load(ctx)
	w.ResolveInitialIntent(ctx, "starter", "digital")
	assert.Equal(t, StepDigital, w.State().Step)

	// the same link again does not undo the customer's edits
	w.Reset(ctx)
	w.ResolveInitialIntent(ctx, "starter", "digital")
	st := w.State()
	assert.Equal(t, StepPreset, st.Step)
	assert.True(t, st.Selection.IsEmpty())

	// a different link is a new navigation
	w.ResolveInitialIntent(ctx, "lights", "summary")
	st = w.State()
	assert.Equal(t, StepSummary, st.Step)
	assert.Equal(t, []string{"L"}, st.Selection.Products)
}

func TestDeepLinkAfterPlainVisit(t *testing.T) {
	w := newLoadedWizard(&fakeStore{}, nil, "")
	ctx := context.Background()

	w.ResolveInitialIntent(ctx, "", "")
	assert.Equal(t, StepPreset, w.State().Step)

	w.ResolveInitialIntent(ctx, "starter", "summary")
	st := w.State()
	assert.Equal(t, StepSummary, st.Step)
	assert.Equal(t, StartModePreset, st.StartMode)
	assert.Equal(t, 230.0, st.Total)
}

func TestLoadWithFailingDigitalServices(t *testing.T) {
	src := &fakeSource{servicesErr: errors.New("boom")}
	w := New(Deps{Catalog: src, Store: &fakeStore{}})
	ctx := context.Background()

	report := w.Load(ctx)
	assert.False(t, report.OK())
	assert.Error(t, report.Services)
	assert.NoError(t, report.Products)
	assert.NoError(t, report.Packages)

	cat := w.Catalog()
	assert.Len(t, cat.Products(), 4)
	assert.Len(t, cat.Packages(), 2)
	assert.Empty(t, cat.Services())
	assert.Empty(t, cat.ServicesByCategory(domain.ServiceCategoryWeb))

	// presets still apply, the missing services just price at zero
	require.NoError(t, w.SelectPreset(ctx, "starter"))
	st := w.State()
	assert.Equal(t, 180.0, st.Total)
	assert.Equal(t, []string{"services"}, st.Unavailable)

	require.NoError(t, w.JumpTo(ctx, StepDigital))
	w.ToggleService(ctx, "S2")
	assert.Equal(t, 180.0, w.State().Total)
}

func TestLoadAllFailing(t *testing.T) {
	boom := errors.New("boom")
	cat, report := LoadCatalog(context.Background(), &fakeSource{productsErr: boom, servicesErr: boom, packagesErr: boom}, nil)
	assert.Equal(t, []string{"products", "services", "packages"}, report.Unavailable())
	assert.Empty(t, cat.Products())
	assert.Empty(t, cat.Services())
	assert.Empty(t, cat.Packages())
}
