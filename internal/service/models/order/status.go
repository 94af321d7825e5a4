package order

import "errors"

var ErrInvalidStatus = errors.New("invalid order status")

// Status is the fulfilment status of a journaled order.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var statuses = []Status{StatusNew, StatusInProgress, StatusShipped, StatusDelivered, StatusCancelled}

func (s Status) String() string {
	return string(s)
}

func ParseStatus(s string) (Status, error) {
	for _, st := range statuses {
		if st.String() == s {
			return st, nil
		}
	}

	return "", ErrInvalidStatus
}
