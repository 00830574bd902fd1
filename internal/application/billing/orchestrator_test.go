package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturalo/facturalo-api/internal/application/dto"
	"github.com/facturalo/facturalo-api/internal/domain/entity"
	"github.com/facturalo/facturalo-api/internal/domain/repository"
	"github.com/facturalo/facturalo-api/internal/infrastructure/wsfe"
	"github.com/facturalo/facturalo-api/pkg/arca"
	"github.com/facturalo/facturalo-api/pkg/logger"
)

// ============================================
// Puertos falsos
// ============================================

type fakeAuthz struct {
	lastNumber    int64
	lastNumberErr error
	caeResponse   json.RawMessage
	caeErr        error

	ultimoCalls    int
	solicitarCalls int
	capturedReq    *wsfe.CAERequest
}

func (f *fakeAuthz) UltimoAutorizado(_ context.Context, _ wsfe.Auth, _, _ int) (int64, error) {
	f.ultimoCalls++
	return f.lastNumber, f.lastNumberErr
}

func (f *fakeAuthz) SolicitarCAE(_ context.Context, _ wsfe.Auth, req wsfe.CAERequest) (json.RawMessage, error) {
	f.solicitarCalls++
	f.capturedReq = &req
	return f.caeResponse, f.caeErr
}

type fakeCustomerRepo struct {
	customer *entity.Customer
}

func (f *fakeCustomerRepo) Create(context.Context, *entity.Customer) error { return nil }
func (f *fakeCustomerRepo) GetByID(_ context.Context, _, _ string) (*entity.Customer, error) {
	return f.customer, nil
}
func (f *fakeCustomerRepo) ListByEmitter(context.Context, string) ([]*entity.Customer, error) {
	return nil, nil
}
func (f *fakeCustomerRepo) Update(context.Context, *entity.Customer) error { return nil }

type fakeInvoiceRepo struct {
	createErr   error
	createCalls int
	saved       *entity.Invoice
	savedItems  []entity.InvoiceItem
}

func (f *fakeInvoiceRepo) Create(_ context.Context, inv *entity.Invoice, items []entity.InvoiceItem) error {
	f.createCalls++
	f.saved = inv
	f.savedItems = items
	return f.createErr
}
func (f *fakeInvoiceRepo) GetByID(context.Context, string, string) (*entity.Invoice, error) {
	return nil, nil
}
func (f *fakeInvoiceRepo) GetItems(context.Context, string) ([]entity.InvoiceItem, error) {
	return nil, nil
}
func (f *fakeInvoiceRepo) ListByEmitter(context.Context, string, repository.InvoiceFilter) ([]*entity.Invoice, error) {
	return nil, nil
}

type fakePDFGen struct {
	renderErr   error
	renderCalls int
}

func (f *fakePDFGen) Render(DocumentPayload) ([]byte, error) {
	f.renderCalls++
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	return []byte("%PDF-1.7"), nil
}

type fakeAttemptLog struct {
	records []AttemptRecord
}

func (f *fakeAttemptLog) LogAttempt(_ context.Context, rec AttemptRecord) {
	f.records = append(f.records, rec)
}

// ============================================
// Fixture
// ============================================

type fixture struct {
	authz    *fakeAuthz
	custRepo *fakeCustomerRepo
	invRepo  *fakeInvoiceRepo
	pdfGen   *fakePDFGen
	attempts *fakeAttemptLog
	orch     *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		authz: &fakeAuthz{lastNumber: 11},
		custRepo: &fakeCustomerRepo{customer: &entity.Customer{
			ID:           "cust-1",
			Name:         "ACME SRL",
			TaxID:        "30712345678",
			IVACondition: "Responsable Inscripto",
			Address:      "Av. Siempre Viva 742",
		}},
		invRepo:  &fakeInvoiceRepo{},
		pdfGen:   &fakePDFGen{},
		attempts: &fakeAttemptLog{},
	}
	f.authz.caeResponse = approvedResponse("75381797088071", "20250210", 12)
	f.orch = NewOrchestrator(f.authz, f.custRepo, f.invRepo, f.pdfGen, f.attempts,
		logger.New(logger.Config{Env: "production", Level: "error"}))
	return f
}

func approvedResponse(cae, vto string, cbteHasta int64) json.RawMessage {
	body := map[string]any{
		"FECAESolicitarResult": map[string]any{
			"FeCabResp": map[string]any{"CbteHasta": cbteHasta, "Resultado": "A"},
			"FeDetResp": map[string]any{"FECAEDetResponse": map[string]any{
				"CAE": cae, "CAEFchVto": vto, "CbteHasta": cbteHasta, "Resultado": "A",
			}},
		},
	}
	raw, _ := json.Marshal(body)
	return raw
}

func testSession() Session {
	return Session{
		Credentials: Credentials{Token: "tok", Sign: "sig", CUIT: "20123456789"},
		ActivePoint: &PointOfSale{Number: 4},
		Account: Account{
			RazonSocial:  "Emisor SA",
			CondicionIVA: "Responsable Inscripto",
		},
	}
}

func testRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		CustomerID: "cust-1",
		CbteTipo:   arca.CbteFacturaA,
		IssueDate:  "2025-01-31",
		Items: []dto.InvoiceItemRequest{
			{Description: "Servicio", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
		},
	}
}

// ============================================
// Flujo feliz
// ============================================

func TestAuthorize_FlujoCompleto(t *testing.T) {
	f := newFixture()

	out, err := f.orch.Authorize(context.Background(), testSession(), testRequest())
	require.NoError(t, err)

	resp := out.Response
	assert.Equal(t, "75381797088071", resp.CAE)
	assert.Equal(t, "10/02/2025", resp.CAEVto)
	assert.Equal(t, int64(12), resp.CbteNumero)
	assert.Equal(t, "0004-00000012", resp.NumberStr)
	assert.Equal(t, "2025-01-31", resp.IssueDate)
	assert.Contains(t, resp.QRURL, arca.QRBaseURL)
	assert.Empty(t, resp.Warnings)
	assert.NotEmpty(t, out.PDF)

	// Números solicitados: último autorizado + 1.
	require.NotNil(t, f.authz.capturedReq)
	assert.Equal(t, int64(12), f.authz.capturedReq.Detalle.CbteDesde)
	assert.Equal(t, int64(12), f.authz.capturedReq.Detalle.CbteHasta)
	assert.Equal(t, "20250131", f.authz.capturedReq.Detalle.CbteFch)

	// Montos y receptor.
	assert.Equal(t, float64(1210), f.authz.capturedReq.Detalle.ImpTotal)
	assert.Equal(t, float64(1000), f.authz.capturedReq.Detalle.ImpNeto)
	assert.Equal(t, float64(210), f.authz.capturedReq.Detalle.ImpIVA)
	assert.Equal(t, arca.DocTipoCUIT, f.authz.capturedReq.Detalle.DocTipo)
	assert.Equal(t, int64(30712345678), f.authz.capturedReq.Detalle.DocNro)
	assert.Equal(t, arca.CondIVAResponsableInscripto, f.authz.capturedReq.Detalle.CondicionIVAReceptorId)
	require.Len(t, f.authz.capturedReq.Detalle.Iva, 1)
	assert.Equal(t, arca.RateID21, f.authz.capturedReq.Detalle.Iva[0].Id)

	// Historial y render.
	assert.Equal(t, 1, f.invRepo.createCalls)
	require.NotNil(t, f.invRepo.saved)
	assert.Equal(t, "0004-00000012", f.invRepo.saved.NumberStr)
	require.Len(t, f.invRepo.savedItems, 1)
	assert.Equal(t, 1, f.pdfGen.renderCalls)

	// El éxito también queda en el historial de intentos.
	require.Len(t, f.attempts.records, 1)
	assert.Equal(t, "wsfe-cae", f.attempts.records[0].Source)
}

// Todo intento, exitoso incluido, se registra con la solicitud y la
// respuesta crudas.
func TestAuthorize_ExitoRegistraSolicitudYRespuesta(t *testing.T) {
	f := newFixture()

	_, err := f.orch.Authorize(context.Background(), testSession(), testRequest())
	require.NoError(t, err)

	require.Len(t, f.attempts.records, 1)
	rec := f.attempts.records[0]
	assert.Equal(t, "wsfe-cae", rec.Source)
	assert.Contains(t, rec.Message, "75381797088071")
	assert.Equal(t, "20123456789", rec.CUIT)
	assert.Equal(t, arca.CbteFacturaA, rec.CbteTipo)
	assert.Equal(t, 4, rec.PtoVta)

	// Solicitud cruda: lo enviado a ARCA, tal cual se serializa.
	require.NotEmpty(t, rec.Request)
	assert.Contains(t, string(rec.Request), `"CbteDesde":12`)
	assert.Contains(t, string(rec.Request), `"ImpTotal":1210`)

	// Respuesta cruda: lo devuelto por el organismo, sin parsear.
	require.NotEmpty(t, rec.Response)
	assert.Contains(t, string(rec.Response), "75381797088071")
}

// ============================================
// Rechazos
// ============================================

// Respuesta sin CAE y sin lista de errores: rechazo implícito. No se persiste
// ni se genera QR/PDF.
func TestAuthorize_RechazoImplicito(t *testing.T) {
	f := newFixture()
	f.authz.caeResponse = json.RawMessage(`{
		"FECAESolicitarResult": {
			"FeCabResp": {"CbteHasta": 12, "Resultado": "R"},
			"FeDetResp": {"FECAEDetResponse": {
				"CAE": "", "Resultado": "R",
				"Observaciones": {"Obs": {"Code": 10048, "Msg": "Condicion IVA receptor invalida"}}
			}}
		}
	}`)

	_, err := f.orch.Authorize(context.Background(), testSession(), testRequest())

	var rejErr *wsfe.ImplicitRejectionError
	require.ErrorAs(t, err, &rejErr)
	assert.Contains(t, rejErr.Observation, "Condicion IVA")

	assert.Zero(t, f.invRepo.createCalls, "un rechazo no debe persistirse")
	assert.Zero(t, f.pdfGen.renderCalls, "un rechazo no debe renderizarse")
	require.Len(t, f.attempts.records, 1)
	assert.Equal(t, "wsfe-implicit-rejection", f.attempts.records[0].Source)
	assert.NotEmpty(t, f.attempts.records[0].Request)
	assert.NotEmpty(t, f.attempts.records[0].Response)
}

// Errores explícitos: se loguea cada uno y se propaga el primero con su código.
func TestAuthorize_ErroresExplicitos(t *testing.T) {
	f := newFixture()
	f.authz.caeResponse = json.RawMessage(`{
		"FECAESolicitarResult": {"Errors": {"Err": [
			{"Code": 10016, "Msg": "Campo CbteDesde invalido"},
			{"Code": 602, "Msg": "Sin resultados"}
		]}}
	}`)

	_, err := f.orch.Authorize(context.Background(), testSession(), testRequest())

	var authErr *wsfe.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 10016, authErr.Code)

	assert.Zero(t, f.invRepo.createCalls)
	require.Len(t, f.attempts.records, 2)
	assert.Equal(t, "wsfe-error", f.attempts.records[0].Source)
	assert.Equal(t, "10016", f.attempts.records[0].ErrorCode)
	assert.NotEmpty(t, f.attempts.records[0].Request)
}

// ============================================
// Degradaciones no fatales
// ============================================

// La consulta del último número falla: se solicita con número 0 y el flujo sigue.
func TestAuthorize_UltimoAutorizadoCaeACero(t *testing.T) {
	f := newFixture()
	f.authz.lastNumberErr = errors.New("connection refused")

	out, err := f.orch.Authorize(context.Background(), testSession(), testRequest())
	require.NoError(t, err)

	require.NotNil(t, f.authz.capturedReq)
	assert.Equal(t, int64(0), f.authz.capturedReq.Detalle.CbteDesde)
	// El número final sale de la respuesta del organismo.
	assert.Equal(t, int64(12), out.Response.CbteNumero)
}

// La persistencia falla: el CAE igual se reporta, con warning.
func TestAuthorize_PersistenciaFallaNoOcultaElCAE(t *testing.T) {
	f := newFixture()
	f.invRepo.createErr = errors.New("db down")

	out, err := f.orch.Authorize(context.Background(), testSession(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "75381797088071", out.Response.CAE)
	require.Len(t, out.Response.Warnings, 1)
	assert.Contains(t, out.Response.Warnings[0], "historial")
	assert.Equal(t, 1, f.pdfGen.renderCalls, "el render sigue aunque falle el historial")
}

// El render falla: el CAE igual se reporta, con warning y sin PDF.
func TestAuthorize_RenderFallaNoOcultaElCAE(t *testing.T) {
	f := newFixture()
	f.pdfGen.renderErr = errors.New("sin fuente")

	out, err := f.orch.Authorize(context.Background(), testSession(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "75381797088071", out.Response.CAE)
	assert.Nil(t, out.PDF)
	require.Len(t, out.Response.Warnings, 1)
}

// ============================================
// Validación y armado de solicitud
// ============================================

func TestAuthorize_ValidacionSinLlamadasRemotas(t *testing.T) {
	cases := []struct {
		nombre string
		mutate func(*Session, *dto.CreateInvoiceRequest)
	}{
		{"sin token", func(s *Session, _ *dto.CreateInvoiceRequest) { s.Credentials.Token = "" }},
		{"sin punto de venta", func(s *Session, _ *dto.CreateInvoiceRequest) { s.ActivePoint = nil }},
		{"sin receptor", func(_ *Session, r *dto.CreateInvoiceRequest) { r.CustomerID = "" }},
		{"sin items", func(_ *Session, r *dto.CreateInvoiceRequest) { r.Items = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			f := newFixture()
			session := testSession()
			req := testRequest()
			tc.mutate(&session, &req)

			_, err := f.orch.Authorize(context.Background(), session, req)

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Zero(t, f.authz.ultimoCalls, "la validación no debe tocar la red")
			assert.Zero(t, f.authz.solicitarCalls)
		})
	}
}

// Familia C: se declara sin discriminar IVA y sin array de alícuotas.
func TestAuthorize_FacturaCSinDesgloseIVA(t *testing.T) {
	f := newFixture()
	req := testRequest()
	req.CbteTipo = arca.CbteFacturaC
	req.Items = []dto.InvoiceItemRequest{
		{Description: "Servicio", Quantity: 1, UnitPrice: decimal.NewFromInt(1210)},
	}

	_, err := f.orch.Authorize(context.Background(), testSession(), req)
	require.NoError(t, err)

	det := f.authz.capturedReq.Detalle
	assert.Equal(t, float64(0), det.ImpIVA)
	assert.Equal(t, det.ImpTotal, det.ImpNeto)
	assert.Nil(t, det.Iva, "la familia C omite el array Iva por completo")

	// El historial refleja lo declarado.
	assert.True(t, f.invRepo.saved.ImpIVA.IsZero())
	assert.True(t, f.invRepo.saved.ImpNeto.Equal(f.invRepo.saved.ImpTotal))
}

// Nota de crédito con comprobante asociado: lleva CbtesAsoc con el tipo del
// comprobante original.
func TestAuthorize_NotaCreditoConAsociado(t *testing.T) {
	f := newFixture()
	req := testRequest()
	req.CbteTipo = arca.CbteNotaCredA
	req.AssociatedNumber = 41

	_, err := f.orch.Authorize(context.Background(), testSession(), req)
	require.NoError(t, err)

	det := f.authz.capturedReq.Detalle
	require.Len(t, det.CbtesAsoc, 1)
	assert.Equal(t, arca.CbteFacturaA, det.CbtesAsoc[0].Tipo)
	assert.Equal(t, 4, det.CbtesAsoc[0].PtoVta)
	assert.Equal(t, int64(41), det.CbtesAsoc[0].Nro)
}

// Nota sin número asociado: no se adjunta bloque CbtesAsoc.
func TestAuthorize_NotaSinAsociadoNoAdjuntaBloque(t *testing.T) {
	f := newFixture()
	req := testRequest()
	req.CbteTipo = arca.CbteNotaCredA

	_, err := f.orch.Authorize(context.Background(), testSession(), req)
	require.NoError(t, err)
	assert.Empty(t, f.authz.capturedReq.Detalle.CbtesAsoc)
}

// Tipo original sin mapeo de asociado: ClassificationError, sin llamada a ARCA.
func TestAuthorize_AsociadoSinMapeo(t *testing.T) {
	f := newFixture()
	req := testRequest()
	req.CbteTipo = arca.CbteNotaCredA
	req.AssociatedNumber = 41
	req.AssociatedCbteTipo = 7 // nota de débito B: no es una factura referenciable

	_, err := f.orch.Authorize(context.Background(), testSession(), req)

	var classErr *arca.ClassificationError
	require.ErrorAs(t, err, &classErr)
	assert.Zero(t, f.authz.solicitarCalls)
}

// ============================================
// Preview
// ============================================

func TestPreview_SinLlamadasRemotas(t *testing.T) {
	f := newFixture()

	resp, err := f.orch.Preview(context.Background(), testSession(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "A", resp.Letter)
	assert.Equal(t, "1210.00", resp.ImpTotal.StringFixed(2))
	assert.Contains(t, resp.QRURL, arca.QRBaseURL)
	assert.Zero(t, f.authz.ultimoCalls)
	assert.Zero(t, f.authz.solicitarCalls)
	assert.Zero(t, f.invRepo.createCalls)
}
