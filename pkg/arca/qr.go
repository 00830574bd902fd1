package arca

import (
	"encoding/base64"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// QRBaseURL URL oficial del validador de comprobantes (RG 4892/2020).
// El payload JSON va base64 en el parámetro p; el formato es bit-exacto.
const QRBaseURL = "https://www.afip.gob.ar/fe/qr/"

// QRInput campos del payload QR. Ver, Moneda, Ctz y TipoCodAut tienen defaults
// (1, "PES", 1, "E"); CodAut puede estar vacío solo para documentos
// provisorios (presupuestos) que aún no tienen CAE.
type QRInput struct {
	Ver        int
	Fecha      string // ISO AAAA-MM-DD
	CUIT       int64  // CUIT del emisor
	PtoVta     int
	TipoCmp    int
	NroCmp     int64
	Importe    decimal.Decimal
	Moneda     string
	Ctz        float64
	TipoDocRec int
	NroDocRec  int64
	TipoCodAut string // "E" = CAE, "A" = CAEA
	CodAut     string // CAE; se filtran los no-dígitos
}

// qrPayload estructura JSON exacta exigida por la RG 4892. Los campos numéricos
// van como números JSON, nunca como strings.
type qrPayload struct {
	Ver        int     `json:"ver"`
	Fecha      string  `json:"fecha"`
	Cuit       int64   `json:"cuit"`
	PtoVta     int     `json:"ptoVta"`
	TipoCmp    int     `json:"tipoCmp"`
	NroCmp     int64   `json:"nroCmp"`
	Importe    float64 `json:"importe"`
	Moneda     string  `json:"moneda"`
	Ctz        float64 `json:"ctz"`
	TipoDocRec int     `json:"tipoDocRec"`
	NroDocRec  int64   `json:"nroDocRec"`
	TipoCodAut string  `json:"tipoCodAut"`
	CodAut     *int64  `json:"codAut,omitempty"`
}

// BuildQRURL arma la URL del QR fiscal: QRBaseURL + "?p=" + base64(JSON).
// Es una función total: aplica defaults, coacciona números y no falla con
// campos opcionales ausentes. Si TipoDocRec es 99 (sin identificar), NroDocRec
// se fuerza a 0 sin importar lo recibido.
func BuildQRURL(in QRInput) string {
	p := qrPayload{
		Ver:        in.Ver,
		Fecha:      in.Fecha,
		Cuit:       in.CUIT,
		PtoVta:     in.PtoVta,
		TipoCmp:    in.TipoCmp,
		NroCmp:     in.NroCmp,
		Importe:    in.Importe.Round(2).InexactFloat64(),
		Moneda:     in.Moneda,
		Ctz:        in.Ctz,
		TipoDocRec: in.TipoDocRec,
		NroDocRec:  in.NroDocRec,
		TipoCodAut: in.TipoCodAut,
	}
	if p.Ver == 0 {
		p.Ver = 1
	}
	if p.Moneda == "" {
		p.Moneda = MonedaPesos
	}
	if p.Ctz == 0 {
		p.Ctz = 1
	}
	if p.TipoCodAut == "" {
		p.TipoCodAut = "E"
	}
	if p.TipoDocRec == DocTipoSinIdentificar {
		p.NroDocRec = 0
	}
	if digits := onlyDigits(in.CodAut); digits != "" {
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
			p.CodAut = &n
		}
	}

	// El payload es un struct plano de tipos básicos: Marshal no puede fallar.
	raw, _ := json.Marshal(p)
	return QRBaseURL + "?p=" + base64.StdEncoding.EncodeToString(raw)
}
