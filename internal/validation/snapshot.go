package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
)

// ValidateSnapshotRecords checks every product and transaction of a restore snapshot.
// Field keys are indexed, e.g. "products[3].name", so a bad record can be located in the file.
func ValidateSnapshotRecords(products []model.Product, transactions []model.Transaction) error {
	errs := make(map[string]string)

	seen := make(map[string]bool, len(products))
	for i, p := range products {
		prefix := fmt.Sprintf("products[%d].", i)
		if strings.TrimSpace(p.ID) == "" {
			errs[prefix+"id"] = "id is required"
		} else if seen[p.ID] {
			errs[prefix+"id"] = fmt.Sprintf("duplicate id: %s", p.ID)
		}
		seen[p.ID] = true

		checkProductFields(errs, prefix, model.ProductFields{
			Name:          p.Name,
			Stock:         p.Stock,
			PurchasePrice: p.PurchasePrice,
			SellingPrice:  p.SellingPrice,
			Compatibility: p.Compatibility,
		})
	}

	seenTx := make(map[string]bool, len(transactions))
	for i, t := range transactions {
		prefix := fmt.Sprintf("transactions[%d].", i)
		if strings.TrimSpace(t.ID) == "" {
			errs[prefix+"id"] = "id is required"
		} else if seenTx[t.ID] {
			errs[prefix+"id"] = fmt.Sprintf("duplicate id: %s", t.ID)
		}
		seenTx[t.ID] = true

		if !t.Type.Valid() {
			errs[prefix+"type"] = fmt.Sprintf("invalid type: %s", t.Type)
		}
		if t.Quantity <= 0 {
			errs[prefix+"quantity"] = "quantity must be positive"
		}
	}

	return errorOrNil(errs)
}
