package deliveryfee

import "time"

// DefaultFee is the flat fee seeded for every wilaya.
const DefaultFee int64 = 500

// Entry is the flat delivery fee of one region.
type Entry struct {
	RegionID  int       `json:"regionId" validate:"min=1,max=58"`
	Fee       int64     `json:"fee"      validate:"gte=0"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Gap is a region that has no fee entry and is therefore delivered for free.
type Gap struct {
	RegionID   int    `json:"regionId"`
	RegionName string `json:"regionName"`
	Message    string `json:"message"`
}
