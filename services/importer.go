package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"asistenciaBot/api"
	"asistenciaBot/logger"
)

var usuariosHeaders = []string{"Nombre_usuario", "Contrasena", "Email", "Tipo_usuario"}

// ValidateCSVStructure checks the file parses and carries the expected
// columns before any row touches the API.
func ValidateCSVStructure(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return &ValidationError{Message: "Error al leer el archivo CSV. Verifique que el formato sea correcto."}
	}

	if len(records) == 0 {
		return &ValidationError{Message: "El archivo está vacío. Envíe un archivo con datos."}
	}
	if len(records) == 1 {
		return &ValidationError{Message: "El archivo solo contiene encabezados. Agregue datos."}
	}

	if !validateHeaders(records[0], usuariosHeaders) {
		return &ValidationError{
			Message: fmt.Sprintf("Estructura de archivo inválida.\n\nColumnas esperadas:\n%v\n\nRecibidas:\n%v",
				usuariosHeaders, records[0]),
		}
	}

	return nil
}

func validateHeaders(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, exp := range expected {
		if actual[i] != exp {
			return false
		}
	}
	return true
}

type usuarioCSVForm struct {
	NombreUsuario string `validate:"required,min=3,max=50"`
	Contrasena    string `validate:"required,min=4"`
	Email         string `validate:"required,email"`
	TipoUsuario   string `validate:"required,oneof=ADMIN PROFESOR ESTUDIANTE"`
}

// ImportResult summarizes a bulk import: the import does not abort on a bad
// row, it collects the failures and keeps going.
type ImportResult struct {
	Creados int
	Errores []string
}

type CSVImporter struct {
	client *api.Client
	logger *logger.Logger
}

func NewCSVImporter(client *api.Client, log *logger.Logger) *CSVImporter {
	return &CSVImporter{client: client, logger: log}
}

// ImportUsuarios validates every row and creates the users through the API
// under the admin chat's credentials.
func (imp *CSVImporter) ImportUsuarios(ctx context.Context, chatID int64, filePath string) (ImportResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return ImportResult{}, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return ImportResult{}, &ValidationError{Message: "Error al leer el archivo CSV."}
	}

	var result ImportResult
	for i, record := range records[1:] {
		line := i + 2 // header is line 1

		if len(record) != len(usuariosHeaders) {
			result.Errores = append(result.Errores, fmt.Sprintf("línea %d: número de columnas incorrecto", line))
			continue
		}

		form := usuarioCSVForm{
			NombreUsuario: record[0],
			Contrasena:    record[1],
			Email:         record[2],
			TipoUsuario:   record[3],
		}
		if err := validate.Struct(form); err != nil {
			result.Errores = append(result.Errores, fmt.Sprintf("línea %d: %s", line, fieldMessages(err)))
			continue
		}

		nuevo := api.NuevoUsuario{
			NombreUsuario: form.NombreUsuario,
			Contrasena:    form.Contrasena,
			Email:         form.Email,
			TipoUsuario:   api.Role(form.TipoUsuario),
		}
		if _, err := imp.client.CrearUsuario(ctx, chatID, nuevo); err != nil {
			imp.logger.Warnf("Failed to create user %s from CSV: %v", form.NombreUsuario, err)
			result.Errores = append(result.Errores, fmt.Sprintf("línea %d: %s", line, api.UserMessage(err)))
			continue
		}
		result.Creados++
	}

	return result, nil
}
