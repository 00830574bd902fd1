// Package wsfe implementa el cliente del proxy HTTP/JSON que expone el
// servicio de facturación electrónica de ARCA (WSFEv1), junto con el parser
// defensivo de sus respuestas.
package wsfe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client es el cliente HTTP del proxy WSFE. El proxy envuelve el SOAP del
// organismo y habla JSON hacia adentro.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient construye el cliente con un timeout generoso: el WSFE puede
// tardar varios segundos en responder.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type ultimoRequest struct {
	PtoVta   int  `json:"ptoVta"`
	CbteTipo int  `json:"cbteTipo"`
	Auth     Auth `json:"auth"`
}

type solicitarRequest struct {
	Auth Auth       `json:"auth"`
	Data CAERequest `json:"data"`
}

// UltimoAutorizado consulta el último número autorizado para el par
// (punto de venta, tipo de comprobante).
func (c *Client) UltimoAutorizado(ctx context.Context, auth Auth, ptoVta, cbteTipo int) (int64, error) {
	raw, err := c.post(ctx, "/ultimo", ultimoRequest{PtoVta: ptoVta, CbteTipo: cbteTipo, Auth: auth})
	if err != nil {
		return 0, err
	}
	return ParseLastNumber(raw)
}

// SolicitarCAE envía la solicitud de autorización y devuelve la respuesta
// cruda: la interpretación queda en manos de ParseCAEResponse, nunca del
// caller directamente.
func (c *Client) SolicitarCAE(ctx context.Context, auth Auth, req CAERequest) (json.RawMessage, error) {
	return c.post(ctx, "/fecaesolicitar", solicitarRequest{Auth: auth, Data: req})
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("wsfe: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("wsfe: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, &NetworkError{Op: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(rawBody, &apiErr)
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return nil, &NetworkError{Op: path, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiErr.Message)}
	}
	return json.RawMessage(rawBody), nil
}
