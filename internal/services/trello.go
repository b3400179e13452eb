// Trello web API implementation of [Service]
//
// Requests are authenticated the way the Trello web client does it: the session cookie is
// forwarded on every request and the dsc token is sent in every write body.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/tbx/internal/models"
	"github.com/desertthunder/tbx/internal/shared"
)

const trelloBaseURL = "https://trello.com"

var (
	cardFields = []string{"id", "name", "idBoard", "idList", "labels", "closed", "desc", "start", "due", "dueReminder"}
	listFields = []string{"id", "name", "idBoard", "pos", "closed"}
)

// TrelloService implements [Service] against the Trello web API.
type TrelloService struct {
	baseURL    string
	token      string
	cookie     string
	httpClient *http.Client
}

// NewTrelloService creates a service authenticated with the dsc token and, optionally, the raw session cookie.
//
// An empty baseURL defaults to https://trello.com and a nil client to [http.DefaultClient].
func NewTrelloService(baseURL, token, cookie string, client *http.Client) (*TrelloService, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: dsc token is empty", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = trelloBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &TrelloService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		cookie:     cookie,
		httpClient: client,
	}, nil
}

// Name returns the name of the service
func (s *TrelloService) Name() string {
	return "Trello"
}

// boardQuery returns the query string of the wide board read.
func boardQuery() string {
	q := url.Values{}
	q.Set("fields", "id,name")
	q.Set("cards", "visible")
	q.Set("card_fields", strings.Join(cardFields, ","))
	q.Set("labels", "all")
	q.Set("lists", "open")
	q.Set("list_fields", strings.Join(listFields, ","))
	return q.Encode()
}

// FetchBoard retrieves a board snapshot.
//
// Calls GET /1/board/{id} with visible cards, every label and open lists.
func (s *TrelloService) FetchBoard(ctx context.Context, boardID string) (*models.Board, error) {
	if boardID == "" {
		return nil, fmt.Errorf("%w: board id is empty", shared.ErrInvalidBoardID)
	}

	endpoint := fmt.Sprintf("/1/board/%s?%s", url.PathEscape(boardID), boardQuery())

	var board models.Board
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &board); err != nil {
		if status, ok := statusOf(err); ok && status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", shared.ErrBoardNotFound, boardID)
		}
		return nil, fmt.Errorf("failed to fetch board %s: %w", boardID, err)
	}

	return &board, nil
}

// UpdateCard applies patch to a card.
//
// Calls PUT /1/cards/{id}.
func (s *TrelloService) UpdateCard(ctx context.Context, cardID string, patch models.CardPatch) error {
	body := struct {
		DSC string `json:"dsc"`
		models.CardPatch
	}{DSC: s.token, CardPatch: patch}

	return s.doRequest(ctx, http.MethodPut, "/1/cards/"+url.PathEscape(cardID), body, nil)
}

// CreateCard copies a card into a list.
//
// Calls POST /1/cards with idCardSource and keepFromSource.
func (s *TrelloService) CreateCard(ctx context.Context, req models.CardCopy) (*models.Card, error) {
	body := struct {
		DSC            string `json:"dsc"`
		IDCardSource   string `json:"idCardSource"`
		IDList         string `json:"idList"`
		Name           string `json:"name"`
		KeepFromSource string `json:"keepFromSource,omitempty"`
	}{
		DSC:            s.token,
		IDCardSource:   req.SourceCardID,
		IDList:         req.ListID,
		Name:           req.Name,
		KeepFromSource: strings.Join(req.KeepFromSource, ","),
	}

	var card models.Card
	if err := s.doRequest(ctx, http.MethodPost, "/1/cards", body, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// DeleteCard permanently deletes a card.
//
// Calls DELETE /1/cards/{id}.
func (s *TrelloService) DeleteCard(ctx context.Context, cardID string) error {
	body := struct {
		DSC string `json:"dsc"`
	}{DSC: s.token}

	return s.doRequest(ctx, http.MethodDelete, "/1/cards/"+url.PathEscape(cardID), body, nil)
}

// statusError is returned by doRequest for non-success responses.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("%s: status %d", shared.ErrAPIRequest, e.status)
	}
	return fmt.Sprintf("%s: status %d: %s", shared.ErrAPIRequest, e.status, e.message)
}

func (e *statusError) Unwrap() []error {
	if e.status == http.StatusServiceUnavailable || e.status == http.StatusBadGateway {
		return []error{shared.ErrAPIRequest, shared.ErrServiceUnavailable}
	}
	return []error{shared.ErrAPIRequest}
}

func statusOf(err error) (int, bool) {
	var se *statusError
	if !errors.As(err, &se) {
		return 0, false
	}
	return se.status, true
}

// doRequest sends payload as JSON (when non-nil) and decodes the response into result (when non-nil).
func (s *TrelloService) doRequest(ctx context.Context, method, endpoint string, payload, result any) error {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cookie != "" {
		req.Header.Set("Cookie", s.cookie)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{status: resp.StatusCode, message: errorMessage(resp.Body)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// errorMessage extracts a message from a JSON {"message": ...} body or falls back to the plain text body.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}

	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Message != "" {
		return errResp.Message
	}
	return strings.TrimSpace(string(data))
}
