package diagnostics

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/posleasing/leasesync/internal/domain"
)

func TestBuild(t *testing.T) {
	r := NewReporter("", 12, domain.ReportModeFlexible, zerolog.Nop())
	now := time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)

	info := r.Build(errors.New("disable failed"), "RunCycle", "disable", []byte("trace"), now)

	assert.Equal(t, SystemName, info.System)
	assert.Equal(t, "Sistema", info.User)
	assert.Equal(t, "RunCycle", info.Function)
	assert.Equal(t, "disable failed", info.Message)
	assert.Equal(t, "trace", info.Trace)
	assert.Equal(t, now, info.Timestamp)
	assert.Contains(t, info.Extra, "Proceso: Sincronización de Arrendamientos")
	assert.Contains(t, info.Extra, "Configuración: Flexible")
	assert.Contains(t, info.Extra, "IdSistema: 12")
	assert.Contains(t, info.Extra, "Etapa: disable")
}

func TestBuild_NilError(t *testing.T) {
	r := NewReporter("operador", 1, domain.ReportModeForce, zerolog.Nop())
	info := r.Build(nil, "RunCycle", "", nil, time.Now())

	assert.Equal(t, "operador", info.User)
	assert.Equal(t, "Error desconocido", info.Message)
	assert.NotContains(t, info.Extra, "Etapa")
}

func TestStats_DoesNotPanic(t *testing.T) {
	r := NewReporter("", 1, domain.ReportModeNone, zerolog.Nop())
	assert.NotPanics(t, func() {
		s := r.Stats()
		assert.GreaterOrEqual(t, s.MemoryUsedPct, 0.0)
	})
}
