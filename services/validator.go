package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"asistenciaBot/api"
)

// ValidationError is a client-side rejection; it never reaches the wire.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type CredencialesForm struct {
	NombreUsuario string `validate:"required,min=3,max=50"`
	Contrasena    string `validate:"required,min=4"`
}

// ParseCredenciales reads a "usuario contraseña" chat message.
func ParseCredenciales(text string) (api.Credentials, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return api.Credentials{}, &ValidationError{
			Message: "Formato inválido. Envíe: usuario contraseña",
		}
	}

	form := CredencialesForm{NombreUsuario: fields[0], Contrasena: fields[1]}
	if err := validate.Struct(form); err != nil {
		return api.Credentials{}, &ValidationError{Message: fieldMessages(err)}
	}

	return api.Credentials{NombreUsuario: form.NombreUsuario, Contrasena: form.Contrasena}, nil
}

type GrupoForm struct {
	Codigo      string `validate:"required,max=20"`
	Materia     string `validate:"required,max=100"`
	NombreGrupo string `validate:"required,max=100"`
	CupoMaximo  int    `validate:"required,min=1,max=200"`
}

// ParseGrupoForm reads the one-line group form:
// codigo; materia; nombre; cupo máximo
func ParseGrupoForm(text string) (api.NuevoGrupo, error) {
	parts := strings.Split(text, ";")
	if len(parts) != 4 {
		return api.NuevoGrupo{}, &ValidationError{
			Message: "Formato inválido. Envíe: código; materia; nombre; cupo máximo",
		}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	cupo, err := strconv.Atoi(parts[3])
	if err != nil {
		return api.NuevoGrupo{}, &ValidationError{Message: "El cupo máximo debe ser un número."}
	}

	form := GrupoForm{
		Codigo:      parts[0],
		Materia:     parts[1],
		NombreGrupo: parts[2],
		CupoMaximo:  cupo,
	}
	if err := validate.Struct(form); err != nil {
		return api.NuevoGrupo{}, &ValidationError{Message: fieldMessages(err)}
	}

	return api.NuevoGrupo{
		Codigo:      form.Codigo,
		Materia:     form.Materia,
		NombreGrupo: form.NombreGrupo,
		CupoMaximo:  form.CupoMaximo,
	}, nil
}

const fechaLayout = "2006-01-02"

// ParseFecha validates a manually typed date.
func ParseFecha(text string) (string, error) {
	text = strings.TrimSpace(text)
	if _, err := time.Parse(fechaLayout, text); err != nil {
		return "", &ValidationError{Message: "Fecha inválida. Use el formato AAAA-MM-DD."}
	}
	return text, nil
}

// fieldMessages turns validator errors into one Spanish sentence per field.
func fieldMessages(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return "Datos inválidos."
	}

	var messages []string
	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			messages = append(messages, fmt.Sprintf("el campo %s es obligatorio", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("el campo %s debe ser un email válido", e.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("el campo %s es demasiado corto", e.Field()))
		case "max":
			messages = append(messages, fmt.Sprintf("el campo %s es demasiado largo", e.Field()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("el campo %s tiene un valor no permitido", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("el campo %s es inválido", e.Field()))
		}
	}
	return strings.Join(messages, ", ")
}
