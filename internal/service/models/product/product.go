package product

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidCategory = errors.New("invalid product category")
)

// Category is one of the fixed storefront categories.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryAppliances  Category = "appliances"
	CategoryTools       Category = "tools"
	CategoryOther       Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryAppliances,
	CategoryTools,
	CategoryOther,
}

func (c Category) String() string {
	return string(c)
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}

	return "", ErrInvalidCategory
}

// Product represents a catalog entry. Price is in whole DZD.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"        validate:"required"`
	Description string    `json:"description"`
	Price       int64     `json:"price"       validate:"gte=0"`
	Category    Category  `json:"category"    validate:"required,oneof=electronics clothing appliances tools other"`
	Images      []string  `json:"images"      validate:"required,min=1,dive,required"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MainImage returns the first image reference, or an empty string.
func (p Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}

	return p.Images[0]
}

// QueryProductsModel represents filter parameters for listing the catalog.
type QueryProductsModel struct {
	Categories []Category `schema:"category"`
	Limit      int        `schema:"limit"`
	Offset     int        `schema:"offset"`
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")

		return name
	})

	return v
}()

// Validate returns a message per invalid field, or nil.
func (p Product) Validate() map[string]string {
	p.Name = strings.TrimSpace(p.Name)

	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if strings.HasPrefix(fe.Namespace(), "Product.images[") {
			field = "images"
		}
		switch field {
		case "name":
			out[field] = "name is required"
		case "price":
			out[field] = "price must not be negative"
		case "category":
			out[field] = "unknown category"
		case "images":
			out[field] = "at least one image is required"
		default:
			out[field] = "invalid value"
		}
	}

	return out
}
