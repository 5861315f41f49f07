package maxAPI

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"asistenciaBot/services"
)

const (
	csvUploadPromptMsg = "📄 Envíe el archivo CSV de usuarios.\n\nColumnas esperadas:\n`Nombre_usuario,Contrasena,Email,Tipo_usuario`"
	csvNoFileMsg       = "No se encontró ningún archivo CSV en el mensaje."
	csvResultFormat    = "📄 Importación terminada: %d usuarios creados."
)

func (b *Bot) handleImportarCSVStart(ctx context.Context, chatID int64, callbackID string) {
	b.setPending(chatID, pendingInput{kind: pendingCSVUsuarios})
	b.answerCallbackWithNotification(ctx, callbackID, "")
	b.sendMessage(ctx, chatID, csvUploadPromptMsg)
}

func (b *Bot) handleCSVUpload(ctx context.Context, chatID int64, attachments []interface{}) {
	b.clearPending(chatID)

	files := extractFileAttachments(attachments)
	if len(files) == 0 {
		b.sendMessage(ctx, chatID, fmt.Sprintf(errorMessageFormat, csvNoFileMsg))
		return
	}

	result, err := b.importUsuariosFile(ctx, chatID, files[0])
	if err != nil {
		b.sendMessage(ctx, chatID, fmt.Sprintf(errorMessageFormat, err.Error()))
		b.showEntryPoint(ctx, chatID)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, csvResultFormat, result.Creados)
	for _, fallo := range result.Errores {
		sb.WriteString("\n⚠️ " + fallo)
	}
	b.sendMessage(ctx, chatID, sb.String())
	b.showEntryPoint(ctx, chatID)
}

func (b *Bot) importUsuariosFile(ctx context.Context, chatID int64, fileAtt *schemes.FileAttachment) (services.ImportResult, error) {
	filePath, err := b.downloadFile(ctx, fileAtt)
	if err != nil {
		return services.ImportResult{}, err
	}
	defer os.Remove(filePath)

	if err := services.ValidateCSVStructure(filePath); err != nil {
		return services.ImportResult{}, err
	}
	return b.importer.ImportUsuarios(ctx, chatID, filePath)
}

func (b *Bot) downloadFile(ctx context.Context, fileAtt *schemes.FileAttachment) (string, error) {
	fileURL := fileAtt.Payload.Url
	b.logger.Debugf("Downloading file: %s from %s", fileAtt.Filename, fileURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.logger.Errorf("Bad HTTP status when downloading file: %s", resp.Status)
		return "", fmt.Errorf("failed to download file: status %s", resp.Status)
	}

	tmpDir := "./tmp"
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return "", err
	}

	filePath := filepath.Join(tmpDir, fileAtt.Filename)
	if err := saveFile(filePath, resp.Body); err != nil {
		return "", err
	}

	b.logger.Infof("File saved to: %s", filePath)
	return filePath, nil
}

func saveFile(filePath string, reader io.Reader) error {
	out, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, reader)
	return err
}

func extractFileAttachments(attachments []interface{}) []*schemes.FileAttachment {
	fileAttachments := []*schemes.FileAttachment{}
	for _, att := range attachments {
		if fileAtt, ok := att.(*schemes.FileAttachment); ok {
			fileAttachments = append(fileAttachments, fileAtt)
		}
	}
	return fileAttachments
}
