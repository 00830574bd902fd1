package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturalo/facturalo-api/internal/domain/repository"
)

type fakeLogRepo struct {
	logs      []*repository.WSFELog
	gotCUIT   string
	gotLimit  int
	listCalls int
}

func (f *fakeLogRepo) Create(context.Context, *repository.WSFELog) error { return nil }
func (f *fakeLogRepo) ListByCUIT(_ context.Context, cuit string, limit int) ([]*repository.WSFELog, error) {
	f.listCalls++
	f.gotCUIT = cuit
	f.gotLimit = limit
	return f.logs, nil
}

func TestWSFELogList_MapeaRegistrosConCuerposCrudos(t *testing.T) {
	now := time.Now()
	repo := &fakeLogRepo{logs: []*repository.WSFELog{
		{
			ID: "log-1", Source: "wsfe-cae", Message: "CAE 75381797088071",
			CUIT: "20123456789", CbteTipo: 1, PtoVta: 4,
			Request:   []byte(`{"PtoVta":4}`),
			Response:  []byte(`{"CAE":"75381797088071"}`),
			CreatedAt: now,
		},
		{
			ID: "log-2", Source: "wsfe-network", Message: "connection refused",
			CUIT: "20123456789", CbteTipo: 1, PtoVta: 4,
			Request:   []byte(`{"PtoVta":4}`),
			CreatedAt: now,
		},
	}}
	uc := NewWSFELogUseCase(repo)

	out, err := uc.List(context.Background(), "20123456789", 25)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "20123456789", repo.gotCUIT)
	assert.Equal(t, 25, repo.gotLimit)

	assert.Equal(t, "wsfe-cae", out[0].Source)
	assert.Equal(t, `{"PtoVta":4}`, out[0].Request)
	assert.Equal(t, `{"CAE":"75381797088071"}`, out[0].Response)

	// Falla de red: hay solicitud pero no respuesta.
	assert.Equal(t, "wsfe-network", out[1].Source)
	assert.NotEmpty(t, out[1].Request)
	assert.Empty(t, out[1].Response)
}
