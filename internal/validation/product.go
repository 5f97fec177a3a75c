package validation

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
)

// MinTextLength is the minimum length of a product name and compatibility text.
const MinTextLength = 2

// MaxImageSize is the largest accepted product image in bytes.
const MaxImageSize = 5 << 20

// AllowedImageTypes lists the accepted image content types.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ValidateProductFields checks the product invariants.
//
// Rules:
//   - name and compatibility: at least MinTextLength characters after trimming
//   - stock: not negative
//   - purchasePrice and sellingPrice: not negative
//
// Returns a validation Error with field-specific messages if validation fails.
func ValidateProductFields(f model.ProductFields) error {
	errs := make(map[string]string)
	checkProductFields(errs, "", f)
	return errorOrNil(errs)
}

func checkProductFields(errs map[string]string, prefix string, f model.ProductFields) {
	if utf8.RuneCountInString(strings.TrimSpace(f.Name)) < MinTextLength {
		errs[prefix+"name"] = fmt.Sprintf("name must be at least %d characters", MinTextLength)
	}
	if utf8.RuneCountInString(strings.TrimSpace(f.Compatibility)) < MinTextLength {
		errs[prefix+"compatibility"] = fmt.Sprintf("compatibility must be at least %d characters", MinTextLength)
	}
	if f.Stock < 0 {
		errs[prefix+"stock"] = "stock cannot be negative"
	}
	if f.PurchasePrice.IsNegative() {
		errs[prefix+"purchasePrice"] = "purchasePrice cannot be negative"
	}
	if f.SellingPrice.IsNegative() {
		errs[prefix+"sellingPrice"] = "sellingPrice cannot be negative"
	}
}

// ValidateImage checks the size and sniffed content type of an uploaded image.
// The declared content type is ignored; only the file contents count.
func ValidateImage(img model.ImageUpload) error {
	errs := make(map[string]string)
	switch {
	case len(img.Data) == 0:
		errs["image"] = "image is empty"
	case len(img.Data) > MaxImageSize:
		errs["image"] = "image must be 5MB or smaller"
	default:
		if ct := DetectImageType(img.Data); !AllowedImageTypes[ct] {
			errs["image"] = fmt.Sprintf("unsupported image type: %s", ct)
		}
	}
	return errorOrNil(errs)
}

// DetectImageType sniffs the content type of image data.
func DetectImageType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}
