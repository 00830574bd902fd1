package wsfe

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// El proxy puede devolver la respuesta del WSFE en tres formas según el
// deployment: el envelope SOAP completo convertido a JSON, el resultado ya
// desenvuelto, o el objeto pelado. El parser prueba ese conjunto cerrado de
// esquemas y falla fuerte si ninguno coincide, en lugar de devolver campos
// vacíos silenciosamente.

// ============================================
// Tipos flexibles de hoja
// ============================================

// flexInt64 acepta número JSON o string numérico.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexInt64(int64(n))
	return nil
}

// flexString acepta string o número JSON.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	*f = flexString(strings.Trim(string(data), `"`))
	return nil
}

// errItems acepta un array de errores o un objeto suelto (lote de uno).
type errItems []ErrItem

func (e *errItems) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	type wireItem struct {
		Code flexInt64  `json:"Code"`
		Msg  flexString `json:"Msg"`
	}
	if data[0] == '[' {
		var items []wireItem
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		for _, it := range items {
			*e = append(*e, ErrItem{Code: int(it.Code), Msg: string(it.Msg)})
		}
		return nil
	}
	var it wireItem
	if err := json.Unmarshal(data, &it); err != nil {
		return err
	}
	*e = append(*e, ErrItem{Code: int(it.Code), Msg: string(it.Msg)})
	return nil
}

// ============================================
// Esquemas de respuesta
// ============================================

type caeDetailResp struct {
	Concepto      flexInt64       `json:"Concepto"`
	CbteDesde     flexInt64       `json:"CbteDesde"`
	CbteHasta     flexInt64       `json:"CbteHasta"`
	Resultado     flexString      `json:"Resultado"`
	CAE           flexString      `json:"CAE"`
	CAEFchVto     json.RawMessage `json:"CAEFchVto"`
	Observaciones *struct {
		Obs errItems `json:"Obs"`
	} `json:"Observaciones"`
}

// caeDetails acepta FECAEDetResponse como objeto o como array (lote de uno).
type caeDetails []caeDetailResp

func (d *caeDetails) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		var items []caeDetailResp
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*d = caeDetails(items)
		return nil
	}
	var it caeDetailResp
	if err := json.Unmarshal(data, &it); err != nil {
		return err
	}
	*d = caeDetails{it}
	return nil
}

type caeResultResp struct {
	FeCabResp *struct {
		CbteHasta flexInt64  `json:"CbteHasta"`
		Resultado flexString `json:"Resultado"`
	} `json:"FeCabResp"`
	FeDetResp *struct {
		FECAEDetResponse caeDetails `json:"FECAEDetResponse"`
	} `json:"FeDetResp"`
	Errors *struct {
		Err errItems `json:"Err"`
	} `json:"Errors"`
}

func (r *caeResultResp) empty() bool {
	return r.FeCabResp == nil && r.FeDetResp == nil && r.Errors == nil
}

type caeEnveloped struct {
	Envelope *struct {
		Body struct {
			FECAESolicitarResponse *struct {
				FECAESolicitarResult caeResultResp `json:"FECAESolicitarResult"`
			} `json:"FECAESolicitarResponse"`
		} `json:"Body"`
	} `json:"Envelope"`
	FECAESolicitarResult *caeResultResp `json:"FECAESolicitarResult"`
}

type lastNumberEnveloped struct {
	Envelope *struct {
		Body struct {
			FECompUltimoAutorizadoResponse *struct {
				FECompUltimoAutorizadoResult lastNumberResult `json:"FECompUltimoAutorizadoResult"`
			} `json:"FECompUltimoAutorizadoResponse"`
		} `json:"Body"`
	} `json:"Envelope"`
	FECompUltimoAutorizadoResult *lastNumberResult `json:"FECompUltimoAutorizadoResult"`
	CbteNro                      *flexInt64        `json:"CbteNro"`
}

type lastNumberResult struct {
	CbteNro *flexInt64 `json:"CbteNro"`
}

// ============================================
// Resultado parseado
// ============================================

// CAEResult es la respuesta de FECAESolicitar ya normalizada.
type CAEResult struct {
	CbteHasta    int64
	Resultado    string // "A" aprobado, "R" rechazado (puede venir vacío)
	CAE          string
	CAEVto       string // DD/MM/AAAA
	Errors       []ErrItem
	Observations []ErrItem
}

// Rejected indica si la respuesta debe tratarse como rechazo: errores
// explícitos o ausencia de CAE.
func (r *CAEResult) Rejected() bool {
	return len(r.Errors) > 0 || r.CAE == ""
}

// ParseCAEResponse decodifica la respuesta cruda del proxy probando los
// esquemas conocidos. Devuelve SchemaError si ninguno coincide.
func ParseCAEResponse(raw json.RawMessage) (*CAEResult, error) {
	var env caeEnveloped
	var result *caeResultResp

	if err := json.Unmarshal(raw, &env); err == nil {
		switch {
		case env.Envelope != nil && env.Envelope.Body.FECAESolicitarResponse != nil:
			result = &env.Envelope.Body.FECAESolicitarResponse.FECAESolicitarResult
		case env.FECAESolicitarResult != nil:
			result = env.FECAESolicitarResult
		}
	}
	if result == nil {
		// Última forma conocida: el resultado pelado.
		var bare caeResultResp
		if err := json.Unmarshal(raw, &bare); err == nil && !bare.empty() {
			result = &bare
		}
	}
	if result == nil || result.empty() {
		return nil, &SchemaError{Op: "fecaesolicitar"}
	}

	out := &CAEResult{}
	if result.FeCabResp != nil {
		out.CbteHasta = int64(result.FeCabResp.CbteHasta)
		out.Resultado = string(result.FeCabResp.Resultado)
	}
	if result.Errors != nil {
		out.Errors = []ErrItem(result.Errors.Err)
	}
	if result.FeDetResp != nil && len(result.FeDetResp.FECAEDetResponse) > 0 {
		det := result.FeDetResp.FECAEDetResponse[0]
		out.CAE = string(det.CAE)
		out.CAEVto = NormalizeDate(det.CAEFchVto)
		if out.CbteHasta == 0 {
			out.CbteHasta = int64(det.CbteHasta)
		}
		if out.Resultado == "" {
			out.Resultado = string(det.Resultado)
		}
		if det.Observaciones != nil {
			out.Observations = []ErrItem(det.Observaciones.Obs)
		}
	}
	return out, nil
}

// ParseLastNumber decodifica la respuesta de FECompUltimoAutorizado.
// Devuelve SchemaError si no encuentra CbteNro en ninguna forma conocida.
func ParseLastNumber(raw json.RawMessage) (int64, error) {
	var env lastNumberEnveloped
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, &SchemaError{Op: "ultimo"}
	}
	switch {
	case env.Envelope != nil && env.Envelope.Body.FECompUltimoAutorizadoResponse != nil &&
		env.Envelope.Body.FECompUltimoAutorizadoResponse.FECompUltimoAutorizadoResult.CbteNro != nil:
		return int64(*env.Envelope.Body.FECompUltimoAutorizadoResponse.FECompUltimoAutorizadoResult.CbteNro), nil
	case env.FECompUltimoAutorizadoResult != nil && env.FECompUltimoAutorizadoResult.CbteNro != nil:
		return int64(*env.FECompUltimoAutorizadoResult.CbteNro), nil
	case env.CbteNro != nil:
		return int64(*env.CbteNro), nil
	}
	return 0, &SchemaError{Op: "ultimo"}
}

// ============================================
// Fechas
// ============================================

// NormalizeDate lleva la fecha del organismo a DD/MM/AAAA. Acepta el formato
// compacto AAAAMMDD (string o número), un string ISO, o un objeto wrapper con
// el valor en el campo "_". Devuelve "" si no puede interpretarla.
func NormalizeDate(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	switch raw[0] {
	case '{':
		var wrapper struct {
			Value flexString `json:"_"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return ""
		}
		s = string(wrapper.Value)
	default:
		s = strings.Trim(string(raw), `"`)
	}

	digits := onlyDigits(s)
	if len(digits) == 8 {
		return digits[6:8] + "/" + digits[4:6] + "/" + digits[0:4]
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return ""
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
