package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientCarriesNoAuthorization(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"estado_general":{"PRESENTE":10}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	analisis, err := client.AnalisisGeneral(context.Background())
	if err != nil {
		t.Fatalf("AnalisisGeneral: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("analytics request carried Authorization %q, want none", gotAuth)
	}
	if analisis.EstadoGeneral["PRESENTE"] != 10 {
		t.Errorf("EstadoGeneral = %v", analisis.EstadoGeneral)
	}
}

func TestClientPaths(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	client := New(srv.URL, time.Second)

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"grupo", func() error { _, err := client.AnalisisGrupo(context.Background(), 5); return err }, "/api/analytics/asistencia/grupo/5"},
		{"estudiante", func() error { _, err := client.AnalisisEstudiante(context.Background(), 9); return err }, "/api/analytics/asistencia/estudiante/9"},
		{"profesor", func() error { _, err := client.ReporteProfesor(context.Background(), 3); return err }, "/api/analytics/reporte/profesor/3"},
		{"desercion", func() error { _, err := client.PrediccionDesercion(context.Background()); return err }, "/api/analytics/prediccion/desercion"},
		{"health", func() error { return client.Health(context.Background()) }, "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err != nil {
				t.Fatalf("call: %v", err)
			}
			if gotPath != tt.want {
				t.Errorf("path = %q, want %q", gotPath, tt.want)
			}
		})
	}
}

func TestClientServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("python is down"))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	if _, err := client.AnalisisGeneral(context.Background()); err == nil {
		t.Fatal("want error on 502")
	}
}
