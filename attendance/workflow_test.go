package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"asistenciaBot/api"
	"asistenciaBot/logger"
)

// fakeAPI lets each test script the three gateway calls. An optional delay
// channel holds verify+roster responses back until released.
type fakeAPI struct {
	mu      sync.Mutex
	ya      bool
	roster  []api.RosterEntry
	loadErr error

	submitErr   error
	submitCount int
	lastReq     api.TomarAsistenciaRequest

	release chan struct{}
}

func (f *fakeAPI) VerificarAsistencia(ctx context.Context, chatID, grupoID int64, fecha string) (bool, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ya, f.loadErr
}

func (f *fakeAPI) ListaAsistencia(ctx context.Context, chatID, grupoID int64, fecha string) ([]api.RosterEntry, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roster, f.loadErr
}

func (f *fakeAPI) TomarAsistencia(ctx context.Context, chatID int64, req api.TomarAsistenciaRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCount++
	f.lastReq = req
	return f.submitErr
}

func selectAndWait(t *testing.T, wf *Workflow, sel Selection) View {
	t.Helper()
	loaded := make(chan View, 1)
	wf.Select(context.Background(), sel, func(v View) { loaded <- v })
	select {
	case v := <-loaded:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("roster load did not complete")
		return View{}
	}
}

func TestSelectLoadsRosterAndFlag(t *testing.T) {
	fake := &fakeAPI{
		ya: false,
		// one blank estado, one duplicate student id
		roster: []api.RosterEntry{
			{EstudianteID: 1, EstudianteNombre: "Ana", Estado: api.EstadoPresente},
			{EstudianteID: 2, EstudianteNombre: "Beto"},
			{EstudianteID: 1, EstudianteNombre: "Ana", Estado: api.EstadoAusente},
		},
	}
	wf := NewWorkflow(fake, 7, logger.GetInstance())

	view := selectAndWait(t, wf, Selection{GrupoID: 5, Fecha: "2026-03-02"})

	if view.Phase != PhaseReady {
		t.Fatalf("Phase = %v, want %v", view.Phase, PhaseReady)
	}
	if len(view.Roster) != 2 {
		t.Fatalf("roster size = %d, want 2 (duplicate dropped)", len(view.Roster))
	}
	if view.Roster[1].Estado != api.EstadoPresente {
		t.Errorf("blank estado = %q, want default %q", view.Roster[1].Estado, api.EstadoPresente)
	}
}

func TestSubmitAlreadyRecordedMakesNoRequest(t *testing.T) {
	fake := &fakeAPI{
		ya:     true,
		roster: []api.RosterEntry{{EstudianteID: 1, Estado: api.EstadoPresente}},
	}
	wf := NewWorkflow(fake, 7, logger.GetInstance())
	selectAndWait(t, wf, Selection{GrupoID: 5, Fecha: "2026-03-02"})

	if err := wf.Submit(context.Background()); !errors.Is(err, ErrYaRegistrada) {
		t.Fatalf("Submit = %v, want ErrYaRegistrada", err)
	}
	if fake.submitCount != 0 {
		t.Errorf("submitCount = %d, want 0", fake.submitCount)
	}
}

func TestSubmitEmptyRosterMakesNoRequest(t *testing.T) {
	fake := &fakeAPI{}
	wf := NewWorkflow(fake, 7, logger.GetInstance())
	selectAndWait(t, wf, Selection{GrupoID: 5, Fecha: "2026-03-02"})

	if err := wf.Submit(context.Background()); !errors.Is(err, ErrRosterVacio) {
		t.Fatalf("Submit = %v, want ErrRosterVacio", err)
	}
	if fake.submitCount != 0 {
		t.Errorf("submitCount = %d, want 0", fake.submitCount)
	}
}

func TestSubmitBuildsPayloadFromEdits(t *testing.T) {
	fake := &fakeAPI{
		roster: []api.RosterEntry{
			{EstudianteID: 1, Estado: api.EstadoPresente},
			{EstudianteID: 2, Estado: api.EstadoPresente},
		},
	}
	wf := NewWorkflow(fake, 7, logger.GetInstance())
	selectAndWait(t, wf, Selection{GrupoID: 5, Fecha: "2026-03-02"})

	if err := wf.SetEstado(2, api.EstadoTardanza); err != nil {
		t.Fatalf("SetEstado: %v", err)
	}
	if err := wf.SetObservaciones(2, "llegó 10 min tarde"); err != nil {
		t.Fatalf("SetObservaciones: %v", err)
	}

	if err := wf.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	req := fake.lastReq
	if req.GrupoID != 5 || req.Fecha != "2026-03-02" {
		t.Errorf("request header = %+v", req)
	}
	if len(req.Asistencias) != 2 {
		t.Fatalf("asistencias = %d, want 2", len(req.Asistencias))
	}
	if req.Asistencias[1].Estado != api.EstadoTardanza || req.Asistencias[1].Observaciones != "llegó 10 min tarde" {
		t.Errorf("edited entry = %+v", req.Asistencias[1])
	}

	view := wf.Snapshot()
	if view.Phase != PhaseSuccess || !view.YaRegistrada {
		t.Errorf("after submit: phase=%v yaRegistrada=%v", view.Phase, view.YaRegistrada)
	}
	if err := wf.Submit(context.Background()); !errors.Is(err, ErrYaRegistrada) {
		t.Errorf("second Submit = %v, want ErrYaRegistrada", err)
	}
	if fake.submitCount != 1 {
		t.Errorf("submitCount = %d, want 1", fake.submitCount)
	}
}

func TestSubmitFailureAllowsRetry(t *testing.T) {
	fake := &fakeAPI{
		roster:    []api.RosterEntry{{EstudianteID: 1, Estado: api.EstadoAusente}},
		submitErr: &api.APIError{Status: 500, Mensaje: "se cayó la base"},
	}
	wf := NewWorkflow(fake, 7, logger.GetInstance())
	selectAndWait(t, wf, Selection{GrupoID: 5, Fecha: "2026-03-02"})

	if err := wf.Submit(context.Background()); err == nil {
		t.Fatal("Submit succeeded, want error")
	}
	view := wf.Snapshot()
	if view.Phase != PhaseError || view.ErrMsg == "" {
		t.Errorf("after failed submit: phase=%v errMsg=%q", view.Phase, view.ErrMsg)
	}
	if view.Roster[0].Estado != api.EstadoAusente {
		t.Error("edits lost after failed submit")
	}

	fake.mu.Lock()
	fake.submitErr = nil
	fake.mu.Unlock()
	if err := wf.Submit(context.Background()); err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	if wf.Snapshot().Phase != PhaseSuccess {
		t.Errorf("retry phase = %v, want %v", wf.Snapshot().Phase, PhaseSuccess)
	}
}

func TestStaleRosterLoadIsDiscarded(t *testing.T) {
	slow := &fakeAPI{
		roster:  []api.RosterEntry{{EstudianteID: 1, EstudianteNombre: "Vieja", Estado: api.EstadoPresente}},
		release: make(chan struct{}),
	}
	wf := NewWorkflow(slow, 7, logger.GetInstance())

	staleLoaded := make(chan View, 1)
	wf.Select(context.Background(), Selection{GrupoID: 1, Fecha: "2026-03-01"}, func(v View) { staleLoaded <- v })

	// Second selection supersedes the first while it is still in flight.
	slow.mu.Lock()
	slow.roster = []api.RosterEntry{{EstudianteID: 2, EstudianteNombre: "Nueva", Estado: api.EstadoPresente}}
	slow.mu.Unlock()
	fresh := make(chan View, 1)
	wf.Select(context.Background(), Selection{GrupoID: 2, Fecha: "2026-03-02"}, func(v View) { fresh <- v })

	close(slow.release)

	select {
	case view := <-fresh:
		if view.Selection.GrupoID != 2 {
			t.Errorf("fresh view selection = %+v", view.Selection)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fresh load did not complete")
	}

	select {
	case view := <-staleLoaded:
		t.Fatalf("stale load surfaced a view: %+v", view)
	case <-time.After(100 * time.Millisecond):
	}

	view := wf.Snapshot()
	if view.Selection.GrupoID != 2 || len(view.Roster) != 1 || view.Roster[0].EstudianteID != 2 {
		t.Errorf("final state belongs to the stale load: %+v", view)
	}
}

func TestResetInvalidatesInFlightLoad(t *testing.T) {
	slow := &fakeAPI{
		roster:  []api.RosterEntry{{EstudianteID: 1, Estado: api.EstadoPresente}},
		release: make(chan struct{}),
	}
	wf := NewWorkflow(slow, 7, logger.GetInstance())

	loaded := make(chan View, 1)
	wf.Select(context.Background(), Selection{GrupoID: 1, Fecha: "2026-03-01"}, func(v View) { loaded <- v })
	wf.Reset()
	close(slow.release)

	select {
	case view := <-loaded:
		t.Fatalf("load after Reset surfaced a view: %+v", view)
	case <-time.After(100 * time.Millisecond):
	}
	if wf.Snapshot().Phase != PhaseIdle {
		t.Errorf("phase = %v, want %v", wf.Snapshot().Phase, PhaseIdle)
	}
}

func TestEditsRejectedOutsideRosterPhases(t *testing.T) {
	wf := NewWorkflow(&fakeAPI{}, 7, logger.GetInstance())

	if err := wf.SetEstado(1, api.EstadoAusente); !errors.Is(err, ErrFaseInvalida) {
		t.Errorf("SetEstado in Idle = %v, want ErrFaseInvalida", err)
	}
	if _, err := wf.CycleEstado(1); !errors.Is(err, ErrFaseInvalida) {
		t.Errorf("CycleEstado in Idle = %v, want ErrFaseInvalida", err)
	}
	if err := wf.Submit(context.Background()); !errors.Is(err, ErrFaseInvalida) {
		t.Errorf("Submit in Idle = %v, want ErrFaseInvalida", err)
	}
}

func TestSetEstadoRejectsInvalidAndUnknown(t *testing.T) {
	fake := &fakeAPI{roster: []api.RosterEntry{{EstudianteID: 1, Estado: api.EstadoPresente}}}
	wf := NewWorkflow(fake, 7, logger.GetInstance())
	selectAndWait(t, wf, Selection{GrupoID: 5, Fecha: "2026-03-02"})

	if err := wf.SetEstado(1, api.Estado("DORMIDO")); !errors.Is(err, ErrEstadoInvalido) {
		t.Errorf("invalid estado = %v, want ErrEstadoInvalido", err)
	}
	if err := wf.SetEstado(99, api.EstadoAusente); !errors.Is(err, ErrEstudianteAusente) {
		t.Errorf("unknown student = %v, want ErrEstudianteAusente", err)
	}
}

func TestCycleEstadoAdvances(t *testing.T) {
	fake := &fakeAPI{roster: []api.RosterEntry{{EstudianteID: 1, Estado: api.EstadoPresente}}}
	wf := NewWorkflow(fake, 7, logger.GetInstance())
	selectAndWait(t, wf, Selection{GrupoID: 5, Fecha: "2026-03-02"})

	want := []api.Estado{api.EstadoAusente, api.EstadoTardanza, api.EstadoJustificado, api.EstadoPresente}
	for _, expected := range want {
		got, err := wf.CycleEstado(1)
		if err != nil {
			t.Fatalf("CycleEstado: %v", err)
		}
		if got != expected {
			t.Fatalf("CycleEstado = %v, want %v", got, expected)
		}
	}
}

func TestSelectFailureEntersErrorPhase(t *testing.T) {
	fake := &fakeAPI{loadErr: &api.TransportError{Err: errors.New("refused")}}
	wf := NewWorkflow(fake, 7, logger.GetInstance())

	view := selectAndWait(t, wf, Selection{GrupoID: 5, Fecha: "2026-03-02"})
	if view.Phase != PhaseError {
		t.Fatalf("Phase = %v, want %v", view.Phase, PhaseError)
	}
	if view.ErrMsg == "" {
		t.Error("ErrMsg empty after failed load")
	}
}
