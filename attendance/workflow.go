// Package attendance drives the take-attendance flow for one chat as an
// explicit state machine: Idle → Loading → Ready → Submitting → Success or
// Error. Keeping the phases explicit is what lets a late response for an
// abandoned selection be discarded instead of overwriting the current one.
package attendance

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"asistenciaBot/api"
	"asistenciaBot/logger"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseSubmitting
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

var (
	// ErrYaRegistrada guards against double-recording; no request is made.
	ErrYaRegistrada = errors.New("la asistencia ya fue registrada para esta fecha")
	// ErrRosterVacio: a group without students is a valid display state,
	// but there is nothing to submit.
	ErrRosterVacio       = errors.New("el grupo no tiene estudiantes inscritos")
	ErrFaseInvalida      = errors.New("la operación no es válida en la fase actual")
	ErrEstadoInvalido    = errors.New("estado de asistencia inválido")
	ErrEstudianteAusente = errors.New("el estudiante no está en la lista")
)

// Selection identifies one roster load. Every in-flight request belongs to
// exactly one selection.
type Selection struct {
	GrupoID int64
	Fecha   string
}

// API is the slice of the gateway the workflow needs.
type API interface {
	VerificarAsistencia(ctx context.Context, chatID, grupoID int64, fecha string) (bool, error)
	ListaAsistencia(ctx context.Context, chatID, grupoID int64, fecha string) ([]api.RosterEntry, error)
	TomarAsistencia(ctx context.Context, chatID int64, req api.TomarAsistenciaRequest) error
}

// View is an immutable snapshot handed to the rendering layer.
type View struct {
	Phase        Phase
	Selection    Selection
	Roster       []api.RosterEntry
	YaRegistrada bool
	ErrMsg       string
}

// Workflow holds the editable roster state of one chat. All fields are
// guarded by mu; rendering happens on snapshots.
type Workflow struct {
	api    API
	chatID int64
	logger *logger.Logger

	mu           sync.Mutex
	phase        Phase
	sel          Selection
	loadID       uuid.UUID
	roster       []api.RosterEntry
	yaRegistrada bool
	errMsg       string
}

func NewWorkflow(client API, chatID int64, log *logger.Logger) *Workflow {
	return &Workflow{
		api:    client,
		chatID: chatID,
		logger: log,
		phase:  PhaseIdle,
	}
}

// Select enters Loading for the given group+date and fetches the
// duplicate-submission flag and the roster concurrently. Both must resolve
// before Ready. The load carries a fresh id; if another Select (or Reset)
// happens before it completes, the result is discarded and onLoaded is
// never called for it. Unsaved edits from the previous roster are dropped.
func (w *Workflow) Select(ctx context.Context, sel Selection, onLoaded func(View)) {
	w.mu.Lock()
	w.phase = PhaseLoading
	w.sel = sel
	w.loadID = uuid.New()
	w.roster = nil
	w.yaRegistrada = false
	w.errMsg = ""
	id := w.loadID
	w.mu.Unlock()

	go func() {
		var (
			wg        sync.WaitGroup
			ya        bool
			roster    []api.RosterEntry
			verifyErr error
			listErr   error
		)

		wg.Add(2)
		go func() {
			defer wg.Done()
			ya, verifyErr = w.api.VerificarAsistencia(ctx, w.chatID, sel.GrupoID, sel.Fecha)
		}()
		go func() {
			defer wg.Done()
			roster, listErr = w.api.ListaAsistencia(ctx, w.chatID, sel.GrupoID, sel.Fecha)
		}()
		wg.Wait()

		w.mu.Lock()
		if w.loadID != id {
			w.mu.Unlock()
			w.logger.Debugf("Discarding stale roster load for chat %d (grupo %d, fecha %s)",
				w.chatID, sel.GrupoID, sel.Fecha)
			return
		}

		if verifyErr != nil || listErr != nil {
			err := verifyErr
			if err == nil {
				err = listErr
			}
			w.phase = PhaseError
			w.errMsg = api.UserMessage(err)
			w.logger.Errorf("Roster load failed for chat %d: %v", w.chatID, err)
		} else {
			w.phase = PhaseReady
			w.yaRegistrada = ya
			w.roster = normalizeRoster(roster)
		}
		view := w.viewLocked()
		w.mu.Unlock()

		if onLoaded != nil {
			onLoaded(view)
		}
	}()
}

// normalizeRoster enforces the roster invariants: one entry per student and
// no empty status (a blank estado from the server becomes PRESENTE).
func normalizeRoster(roster []api.RosterEntry) []api.RosterEntry {
	seen := make(map[int64]bool, len(roster))
	out := make([]api.RosterEntry, 0, len(roster))
	for _, entry := range roster {
		if seen[entry.EstudianteID] {
			continue
		}
		seen[entry.EstudianteID] = true
		if !entry.Estado.Valid() {
			entry.Estado = api.EstadoPresente
		}
		out = append(out, entry)
	}
	return out
}

// Reset returns to Idle and invalidates any in-flight load.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.phase = PhaseIdle
	w.sel = Selection{}
	w.loadID = uuid.New()
	w.roster = nil
	w.yaRegistrada = false
	w.errMsg = ""
}

// SetEstado changes one student's status. Editing is allowed while the
// roster is on screen (Ready, Success, Error) even when the submit action
// is blocked.
func (w *Workflow) SetEstado(estudianteID int64, estado api.Estado) error {
	if !estado.Valid() {
		return ErrEstadoInvalido
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.editableLocked() {
		return ErrFaseInvalida
	}
	for i := range w.roster {
		if w.roster[i].EstudianteID == estudianteID {
			w.roster[i].Estado = estado
			return nil
		}
	}
	return ErrEstudianteAusente
}

// CycleEstado advances a student to the next status and reports it. The
// keyboard renders one tap per step.
func (w *Workflow) CycleEstado(estudianteID int64) (api.Estado, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.editableLocked() {
		return "", ErrFaseInvalida
	}
	for i := range w.roster {
		if w.roster[i].EstudianteID == estudianteID {
			w.roster[i].Estado = w.roster[i].Estado.Next()
			return w.roster[i].Estado, nil
		}
	}
	return "", ErrEstudianteAusente
}

func (w *Workflow) SetObservaciones(estudianteID int64, observaciones string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.editableLocked() {
		return ErrFaseInvalida
	}
	for i := range w.roster {
		if w.roster[i].EstudianteID == estudianteID {
			w.roster[i].Observaciones = observaciones
			return nil
		}
	}
	return ErrEstudianteAusente
}

// Submit sends the current roster. It is rejected locally, with no network
// call, when attendance is already recorded or the roster is empty. A
// failed submit stays on the edited roster and may be retried; Loading is
// not re-entered.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	if !w.editableLocked() {
		w.mu.Unlock()
		return ErrFaseInvalida
	}
	if w.yaRegistrada {
		w.mu.Unlock()
		return ErrYaRegistrada
	}
	if len(w.roster) == 0 {
		w.mu.Unlock()
		return ErrRosterVacio
	}

	req := api.TomarAsistenciaRequest{
		GrupoID:     w.sel.GrupoID,
		Fecha:       w.sel.Fecha,
		Asistencias: make([]api.RegistroAsistencia, 0, len(w.roster)),
	}
	for _, entry := range w.roster {
		req.Asistencias = append(req.Asistencias, api.RegistroAsistencia{
			EstudianteID:  entry.EstudianteID,
			Estado:        entry.Estado,
			Observaciones: entry.Observaciones,
		})
	}

	w.phase = PhaseSubmitting
	w.errMsg = ""
	id := w.loadID
	w.mu.Unlock()

	err := w.api.TomarAsistencia(ctx, w.chatID, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loadID != id {
		// Selection changed while the request was in flight; the new
		// load owns the state now.
		return err
	}
	if err != nil {
		w.phase = PhaseError
		w.errMsg = api.UserMessage(err)
		return err
	}
	w.phase = PhaseSuccess
	w.yaRegistrada = true
	return nil
}

// Snapshot returns a copy of the current state for rendering.
func (w *Workflow) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *Workflow) editableLocked() bool {
	return w.phase == PhaseReady || w.phase == PhaseSuccess || w.phase == PhaseError
}

func (w *Workflow) viewLocked() View {
	roster := make([]api.RosterEntry, len(w.roster))
	copy(roster, w.roster)
	return View{
		Phase:        w.phase,
		Selection:    w.sel,
		Roster:       roster,
		YaRegistrada: w.yaRegistrada,
		ErrMsg:       w.errMsg,
	}
}
