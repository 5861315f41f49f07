package maxAPI

import (
	"context"
	"sync"

	maxbot "github.com/max-messenger/max-bot-api-client-go"
	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"asistenciaBot/analytics"
	"asistenciaBot/api"
	"asistenciaBot/attendance"
	"asistenciaBot/config"
	"asistenciaBot/logger"
	"asistenciaBot/services"
	"asistenciaBot/session"
)

// pendingKind tags what the next plain-text message (or file) from a chat
// is expected to be.
type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingCredenciales
	pendingFecha
	pendingObservacion
	pendingNuevoGrupo
	pendingContrasena
	pendingCSVUsuarios
)

type pendingInput struct {
	kind         pendingKind
	grupoID      int64
	usuarioID    int64
	estudianteID int64
}

type Bot struct {
	MaxBot    *schemes.BotInfo
	MaxAPI    *maxbot.Api
	logger    *logger.Logger
	client    *api.Client
	analytics *analytics.Client
	store     *session.Store
	guard     *session.Guard
	importer  *services.CSVImporter

	mu                sync.Mutex
	pendingInputs     map[int64]pendingInput
	processedMessages map[string]bool
	workflows         map[int64]*attendance.Workflow
}

func NewBot(cfg *config.MaxConfig, log *logger.Logger, client *api.Client, analyticsClient *analytics.Client, store *session.Store, ctx context.Context) (*Bot, error) {
	maxAPI, err := maxbot.New(cfg.Token)
	if err != nil && err.Error() != "" {
		log.Errorf("failed to create max api: %v", err)
		return nil, err
	}

	maxBot, err := maxAPI.Bots.GetBot(ctx)
	if err != nil && err.Error() != "" {
		log.Errorf("failed to get bot info: %v", err)
		return nil, err
	}

	return &Bot{
		MaxBot:            maxBot,
		MaxAPI:            maxAPI,
		logger:            log,
		client:            client,
		analytics:         analyticsClient,
		store:             store,
		guard:             session.NewGuard(store),
		importer:          services.NewCSVImporter(client, log),
		pendingInputs:     make(map[int64]pendingInput),
		processedMessages: make(map[string]bool),
		workflows:         make(map[int64]*attendance.Workflow),
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	go func() {
		for upd := range b.MaxAPI.GetUpdates(ctx) {
			b.logger.Debugf("Received update type: %T", upd)

			switch u := upd.(type) {
			case *schemes.BotStartedUpdate:
				b.handleBotStarted(ctx, u)
			case *schemes.MessageCreatedUpdate:
				b.handleMessageCreated(ctx, u)
			case *schemes.MessageCallbackUpdate:
				b.handleCallback(ctx, u)
			default:
				b.logger.Debugf("Unhandled update type: %T", upd)
			}
		}
	}()
}

// AuthFailure implements api.AuthFailureHandler: the backend rejected the
// chat's token, so the session is torn down and the chat goes back to the
// login prompt. No screen can suppress this.
func (b *Bot) AuthFailure(ctx context.Context, chatID int64) {
	b.store.Invalidate(ctx, chatID)
	b.workflowFor(chatID).Reset()
	b.clearPending(chatID)

	b.sendMessage(ctx, chatID, sessionExpiredMsg)
	b.sendLoginPrompt(ctx, chatID)
}

func (b *Bot) workflowFor(chatID int64) *attendance.Workflow {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.workflows[chatID]
	if !ok {
		w = attendance.NewWorkflow(b.client, chatID, b.logger)
		b.workflows[chatID] = w
	}
	return w
}

func (b *Bot) setPending(chatID int64, p pendingInput) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pendingInputs[chatID] = p
}

func (b *Bot) pending(chatID int64) pendingInput {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pendingInputs[chatID]
}

func (b *Bot) clearPending(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pendingInputs, chatID)
}
