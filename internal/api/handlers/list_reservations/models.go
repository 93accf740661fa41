package list_reservations

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
)

// ToServiceRequest собирает фильтр из query параметров
// equipmentId, requesterId, status, from, to (RFC3339), limit, offset
func ToServiceRequest(q url.Values) (*models.ListRequest, error) {
	req := &models.ListRequest{}

	var err error
	if req.EquipmentID, err = parseInt64(q, "equipmentId"); err != nil {
		return nil, err
	}
	if req.RequesterID, err = parseInt64(q, "requesterId"); err != nil {
		return nil, err
	}
	if req.From, err = parseTime(q, "from"); err != nil {
		return nil, err
	}
	if req.To, err = parseTime(q, "to"); err != nil {
		return nil, err
	}
	if s := q.Get("status"); s != "" {
		req.Status = &s
	}
	if req.Limit, err = parseUint(q, "limit"); err != nil {
		return nil, err
	}
	if req.Offset, err = parseUint(q, "offset"); err != nil {
		return nil, err
	}

	return req, nil
}

func parseInt64(q url.Values, name string) (*int64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &v, nil
}

func parseUint(q url.Values, name string) (uint64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func parseTime(q url.Values, name string) (*time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &t, nil
}
