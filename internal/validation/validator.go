package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"busline/internal/models"
)

// Route - маршрут, по которому проверяется работающий API
type Route struct {
	From        string
	To          string
	JourneyDate models.Date
	UserEmail   string
}

// APIValidator прогоняет поиск, схему мест и бронирование против живого сервера
type APIValidator struct {
	baseURL string
	client  *http.Client
}

// NewAPIValidator создает новый валидатор
func NewAPIValidator(baseURL string, client *http.Client) *APIValidator {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &APIValidator{baseURL: baseURL, client: client}
}

// ValidateAll проверяет все endpoints
func (v *APIValidator) ValidateAll(ctx context.Context, route Route) error {
	slog.Info("Начинаю валидацию API", "base_url", v.baseURL)

	if err := v.validateHealth(ctx); err != nil {
		return fmt.Errorf("health validation failed: %w", err)
	}

	journey, err := v.validateSearch(ctx, route)
	if err != nil {
		return fmt.Errorf("search validation failed: %w", err)
	}

	seat, err := v.validateSeats(ctx, journey)
	if err != nil {
		return fmt.Errorf("seats validation failed: %w", err)
	}

	if err := v.validateBooking(ctx, journey, seat, route.UserEmail); err != nil {
		return fmt.Errorf("booking validation failed: %w", err)
	}

	slog.Info("Все endpoints прошли валидацию успешно")
	return nil
}

func (v *APIValidator) validateHealth(ctx context.Context) error {
	status, _, err := v.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET /health: expected 200, got %d", status)
	}
	return nil
}

func (v *APIValidator) validateSearch(ctx context.Context, route Route) (*models.Journey, error) {
	status, body, err := v.do(ctx, http.MethodPost, "/api/search/search", models.SearchJourneysRequest{
		From:        route.From,
		To:          route.To,
		JourneyDate: route.JourneyDate,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("POST /api/search/search: expected 200, got %d (%s)", status, body)
	}

	var journeys []models.Journey
	if err := json.Unmarshal(body, &journeys); err != nil {
		return nil, fmt.Errorf("POST /api/search/search: failed to decode response: %w", err)
	}
	if len(journeys) == 0 {
		return nil, fmt.Errorf("POST /api/search/search: expected non-empty list")
	}

	// пустой запрос обязан отклоняться
	status, _, err = v.do(ctx, http.MethodPost, "/api/search/search", map[string]string{})
	if err != nil {
		return nil, err
	}
	if status != http.StatusBadRequest {
		return nil, fmt.Errorf("POST /api/search/search without route: expected 400, got %d", status)
	}

	slog.Info("Search endpoint валиден", "journeys", len(journeys))
	return &journeys[0], nil
}

func (v *APIValidator) validateSeats(ctx context.Context, journey *models.Journey) (*models.SeatView, error) {
	path := "/api/seats/" + journey.ID.String()
	status, body, err := v.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("GET %s: expected 200, got %d", path, status)
	}

	var seats []models.SeatView
	if err := json.Unmarshal(body, &seats); err != nil {
		return nil, fmt.Errorf("GET %s: failed to decode response: %w", path, err)
	}
	if len(seats) != journey.TotalSeats {
		return nil, fmt.Errorf("GET %s: expected %d seats, got %d", path, journey.TotalSeats, len(seats))
	}

	for i := range seats {
		if !seats[i].IsBooked {
			slog.Info("Seats endpoint валиден", "free_seat", seats[i].SeatNumber)
			return &seats[i], nil
		}
	}
	return nil, fmt.Errorf("GET %s: journey is fully booked", path)
}

func (v *APIValidator) validateBooking(ctx context.Context, journey *models.Journey, seat *models.SeatView, email string) error {
	req := map[string]any{
		"journeyId":  journey.ID.String(),
		"seatNumber": seat.SeatNumber,
		"userEmail":  email,
	}

	status, body, err := v.do(ctx, http.MethodPost, "/api/seats/book", req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("POST /api/seats/book: expected 200, got %d (%s)", status, body)
	}

	// повторная попытка на то же место
	status, _, err = v.do(ctx, http.MethodPost, "/api/seats/book", req)
	if err != nil {
		return err
	}
	if status != http.StatusConflict {
		return fmt.Errorf("POST /api/seats/book twice: expected 409, got %d", status)
	}

	slog.Info("Booking endpoint валиден", "seat", seat.SeatNumber)
	return nil
}

func (v *APIValidator) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, v.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// RunValidation запускает валидацию API
func RunValidation(ctx context.Context, baseURL string, route Route) error {
	return NewAPIValidator(baseURL, nil).ValidateAll(ctx, route)
}
