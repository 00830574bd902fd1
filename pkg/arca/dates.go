package arca

import "time"

// Today devuelve la fecha de hoy en los dos formatos que usa el WSFE:
// compacto AAAAMMDD (CbteFch) e ISO AAAA-MM-DD (QR y persistencia).
func Today() (compact, iso string) {
	now := time.Now()
	return now.Format("20060102"), now.Format("2006-01-02")
}

// NormalizeIssueDate valida una fecha de emisión ISO y devuelve ambos formatos.
// Fecha vacía o inválida resuelve a hoy.
func NormalizeIssueDate(isoDate string) (compact, iso string) {
	if isoDate == "" {
		return Today()
	}
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return Today()
	}
	return t.Format("20060102"), t.Format("2006-01-02")
}

// DisplayDate convierte una fecha ISO AAAA-MM-DD al formato impreso DD/MM/AAAA.
// Entrada inválida se devuelve tal cual.
func DisplayDate(isoDate string) string {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	return t.Format("02/01/2006")
}
