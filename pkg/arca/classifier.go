package arca

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ClassificationError indica que un tipo de comprobante no tiene mapeo definido
// en la tabla de comprobantes asociados. Nunca se resuelve con un default
// silencioso: un código asociado incorrecto hace rechazar la nota en AFIP.
type ClassificationError struct {
	CbteTipo int
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("arca: CbteTipo %d sin tipo de comprobante asociado definido", e.CbteTipo)
}

// ResolveInvoiceClass resuelve el CbteTipo por defecto según la condición IVA
// del emisor y del receptor. Es el resolutor de respaldo: la UI puede dejar que
// el usuario elija la clase explícitamente.
//
//   - Emisor monotributista (cualquier variante) -> Factura C.
//   - Emisor Responsable Inscripto -> A si el receptor también lo es, si no B.
//   - Cualquier otra condición del emisor -> B.
func ResolveInvoiceClass(issuerVatCondition, receiverVatCondition string) int {
	if strings.HasPrefix(issuerVatCondition, "Monotribut") {
		return CbteFacturaC
	}
	if issuerVatCondition == "Responsable Inscripto" {
		if receiverVatCondition == "Responsable Inscripto" {
			return CbteFacturaA
		}
		return CbteFacturaB
	}
	return CbteFacturaB
}

// DocTypeResolution resultado de clasificar el identificador fiscal del receptor.
type DocTypeResolution struct {
	DocTipo int
	DocNro  int64
}

// cuitPrefixes prefijos de dos dígitos que identifican un CUIT de persona
// jurídica. Los prefijos de persona (20/23/24/27) NO se clasifican como CUIL:
// la regla correcta está pendiente de confirmación con el organismo, por lo
// que se usa el código genérico CDI en lugar de adivinar.
var cuitPrefixes = map[string]bool{"30": true, "33": true, "34": true}

// ResolveReceiverDocType clasifica el identificador fiscal del receptor en
// (DocTipo, DocNro) según la tabla de tipos de documento WSFEv1.
//
//   - 11 dígitos con prefijo 30/33/34 -> CUIT (80).
//   - 11 dígitos con otro prefijo     -> CDI (87), identificador genérico.
//   - 8 dígitos                       -> DNI (96).
//   - Empieza con 'P' + letras        -> Pasaporte (94), DocNro 0.
//   - Empieza con otra letra          -> Cédula extranjera (91), DocNro 0.
//   - Vacío o no reconocible          -> Sin identificar (99), DocNro 0.
func ResolveReceiverDocType(taxID string) DocTypeResolution {
	trimmed := strings.TrimSpace(taxID)
	digits := onlyDigits(trimmed)

	switch len(digits) {
	case 11:
		nro, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return DocTypeResolution{DocTipo: DocTipoSinIdentificar}
		}
		if cuitPrefixes[digits[:2]] {
			return DocTypeResolution{DocTipo: DocTipoCUIT, DocNro: nro}
		}
		return DocTypeResolution{DocTipo: DocTipoCDI, DocNro: nro}
	case 8:
		nro, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return DocTypeResolution{DocTipo: DocTipoSinIdentificar}
		}
		return DocTypeResolution{DocTipo: DocTipoDNI, DocNro: nro}
	}

	if trimmed != "" && unicode.IsLetter(rune(trimmed[0])) {
		if trimmed[0] == 'P' || trimmed[0] == 'p' {
			return DocTypeResolution{DocTipo: DocTipoPasaporte}
		}
		return DocTypeResolution{DocTipo: DocTipoCIExtranjera}
	}

	return DocTypeResolution{DocTipo: DocTipoSinIdentificar}
}

// VatConditionID mapea la etiqueta legible de condición IVA al id AFIP
// (CondicionIVAReceptorId). Etiqueta desconocida o vacía -> Consumidor Final.
func VatConditionID(label string) int {
	if id, ok := vatConditionIDs[strings.TrimSpace(label)]; ok {
		return id
	}
	return CondIVAConsumidorFinal
}

// associatedDocTypes tabla CbteTipo del comprobante original -> código de
// comprobante asociado (CbtesAsoc.Tipo). Solo las facturas pueden referenciarse
// desde una nota; el espacio numérico coincide con CbteTipo pero se mantiene
// como tabla propia porque AFIP los publica como catálogos separados.
var associatedDocTypes = map[int]int{
	CbteFacturaA:    CbteFacturaA,
	CbteFacturaB:    CbteFacturaB,
	CbteFacturaC:    CbteFacturaC,
	CbteFCEFacturaA: CbteFCEFacturaA,
	CbteFCEFacturaB: CbteFCEFacturaB,
	CbteFCEFacturaC: CbteFCEFacturaC,
}

// AssociatedDocType devuelve el código de comprobante asociado para el
// comprobante ORIGINAL que referencia una nota de crédito/débito.
// Retorna ClassificationError para clases sin mapeo (nunca default silencioso).
func AssociatedDocType(originalCbteTipo int) (int, error) {
	if t, ok := associatedDocTypes[originalCbteTipo]; ok {
		return t, nil
	}
	return 0, &ClassificationError{CbteTipo: originalCbteTipo}
}

// originalClassForNote tabla nota -> factura de la misma letra/familia.
var originalClassForNote = map[int]int{
	CbteNotaDebA: CbteFacturaA, CbteNotaCredA: CbteFacturaA,
	CbteNotaDebB: CbteFacturaB, CbteNotaCredB: CbteFacturaB,
	CbteNotaDebC: CbteFacturaC, CbteNotaCredC: CbteFacturaC,
	CbteFCENotaDebA: CbteFCEFacturaA, CbteFCENotaCredA: CbteFCEFacturaA,
	CbteFCENotaDebB: CbteFCEFacturaB, CbteFCENotaCredB: CbteFCEFacturaB,
	CbteFCENotaDebC: CbteFCEFacturaC, CbteFCENotaCredC: CbteFCEFacturaC,
}

// OriginalClassForNote devuelve el CbteTipo de la factura que por defecto
// referencia una nota (misma letra y familia). Para comprobantes que no son
// notas devuelve 0.
func OriginalClassForNote(noteCbteTipo int) int {
	return originalClassForNote[noteCbteTipo]
}

// RateID devuelve el id de alícuota AFIP para una tasa de IVA en porcentaje.
// Tasa no catalogada resuelve al id del 21%.
func RateID(rate decimal.Decimal) int {
	if id, ok := VatRateIDs[rate.StringFixed(2)]; ok {
		return id
	}
	return RateID21
}

// onlyDigits deja solo dígitos 0-9 (CUIT, CUIL, DNI llegan con guiones o puntos).
func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
