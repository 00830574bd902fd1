package wsfe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// ParseCAEResponse
// ============================================

// Envelope SOAP completo convertido a JSON, con detalle como objeto.
func TestParseCAEResponse_Envelope(t *testing.T) {
	raw := json.RawMessage(`{
		"Envelope": {"Body": {"FECAESolicitarResponse": {"FECAESolicitarResult": {
			"FeCabResp": {"CbteHasta": 12, "Resultado": "A"},
			"FeDetResp": {"FECAEDetResponse": {
				"CAE": "75381797088071",
				"CAEFchVto": "20250210",
				"CbteHasta": 12,
				"Resultado": "A"
			}}
		}}}}
	}`)

	res, err := ParseCAEResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.CbteHasta)
	assert.Equal(t, "75381797088071", res.CAE)
	assert.Equal(t, "10/02/2025", res.CAEVto)
	assert.Equal(t, "A", res.Resultado)
	assert.False(t, res.Rejected())
}

// Forma desenvuelta, detalle como array de uno y CAE numérico.
func TestParseCAEResponse_Desenvuelto(t *testing.T) {
	raw := json.RawMessage(`{
		"FECAESolicitarResult": {
			"FeCabResp": {"CbteHasta": "45", "Resultado": "A"},
			"FeDetResp": {"FECAEDetResponse": [{
				"CAE": 75381797088071,
				"CAEFchVto": 20250210
			}]}
		}
	}`)

	res, err := ParseCAEResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(45), res.CbteHasta)
	assert.Equal(t, "75381797088071", res.CAE)
	assert.Equal(t, "10/02/2025", res.CAEVto)
}

// Errores explícitos: pueden venir como array o como objeto suelto.
func TestParseCAEResponse_ErroresExplicitos(t *testing.T) {
	cases := []struct {
		nombre string
		raw    string
	}{
		{"array", `{"FECAESolicitarResult": {"Errors": {"Err": [{"Code": 10016, "Msg": "Campo CbteDesde invalido"}]}}}`},
		{"objeto", `{"FECAESolicitarResult": {"Errors": {"Err": {"Code": 10016, "Msg": "Campo CbteDesde invalido"}}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			res, err := ParseCAEResponse(json.RawMessage(tc.raw))
			require.NoError(t, err)
			require.Len(t, res.Errors, 1)
			assert.Equal(t, 10016, res.Errors[0].Code)
			assert.Equal(t, "Campo CbteDesde invalido", res.Errors[0].Msg)
			assert.True(t, res.Rejected())
		})
	}
}

// Rechazo implícito: resultado "R", sin CAE y sin lista de errores, con
// observación en el detalle.
func TestParseCAEResponse_RechazoImplicito(t *testing.T) {
	raw := json.RawMessage(`{
		"FECAESolicitarResult": {
			"FeCabResp": {"CbteHasta": 13, "Resultado": "R"},
			"FeDetResp": {"FECAEDetResponse": {
				"CAE": "",
				"Resultado": "R",
				"Observaciones": {"Obs": {"Code": 10048, "Msg": "Condicion IVA receptor invalida"}}
			}}
		}
	}`)

	res, err := ParseCAEResponse(raw)
	require.NoError(t, err)
	assert.Empty(t, res.CAE)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Observations, 1)
	assert.Equal(t, 10048, res.Observations[0].Code)
	assert.True(t, res.Rejected())
}

// Respuesta que no coincide con ningún esquema conocido: falla fuerte.
func TestParseCAEResponse_EsquemaDesconocido(t *testing.T) {
	for _, raw := range []string{`{}`, `{"foo": "bar"}`, `"texto"`} {
		_, err := ParseCAEResponse(json.RawMessage(raw))
		var schemaErr *SchemaError
		assert.ErrorAs(t, err, &schemaErr, "raw=%s", raw)
	}
}

// ============================================
// ParseLastNumber
// ============================================

func TestParseLastNumber_Formas(t *testing.T) {
	cases := []struct {
		nombre string
		raw    string
		want   int64
	}{
		{"envelope", `{"Envelope": {"Body": {"FECompUltimoAutorizadoResponse": {"FECompUltimoAutorizadoResult": {"CbteNro": 41}}}}}`, 41},
		{"desenvuelto", `{"FECompUltimoAutorizadoResult": {"CbteNro": "7"}}`, 7},
		{"pelado", `{"CbteNro": 0}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			got, err := ParseLastNumber(json.RawMessage(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseLastNumber_EsquemaDesconocido(t *testing.T) {
	_, err := ParseLastNumber(json.RawMessage(`{"otra": "cosa"}`))
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

// ============================================
// NormalizeDate
// ============================================

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		nombre string
		raw    string
		want   string
	}{
		{"compacto string", `"20250131"`, "31/01/2025"},
		{"compacto numero", `20250131`, "31/01/2025"},
		{"iso", `"2025-01-31"`, "31/01/2025"},
		{"wrapper", `{"_": "20250131"}`, "31/01/2025"},
		{"rfc3339", `"2025-01-31T00:00:00Z"`, "31/01/2025"},
		{"null", `null`, ""},
		{"basura", `"no-es-fecha"`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeDate(json.RawMessage(tc.raw)))
		})
	}
}
