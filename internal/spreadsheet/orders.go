// Package spreadsheet parses marketplace order exports into import
// rows. Only the CSV shape shared by the supported channels is
// handled here; anything richer (xlsx and friends) is converted
// upstream before upload.
package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// ParseOrders reads a CSV export with a header row. Recognized
// columns: order_id, customer_name, product_name, quantity, sku,
// unit_price, purchase_date, shipping_provider, tracking_number.
// Unknown columns are ignored; missing optional columns default.
func ParseOrders(r io.Reader) ([]*entity.ImportRow, error) {
	const op = "spreadsheet.ParseOrders"

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", op, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[normalizeColumn(name)] = i
	}
	if _, ok := index["order_id"]; !ok {
		return nil, fmt.Errorf("%s: missing order_id column: %w", op, entity.ErrInvalidData)
	}
	if _, ok := index["product_name"]; !ok {
		return nil, fmt.Errorf("%s: missing product_name column: %w", op, entity.ErrInvalidData)
	}

	var rows []*entity.ImportRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", op, line, err)
		}

		row, err := parseRecord(index, record)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", op, line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseRecord(index map[string]int, record []string) (*entity.ImportRow, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	orderID := field("order_id")
	if orderID == "" {
		return nil, fmt.Errorf("empty order_id: %w", entity.ErrInvalidData)
	}
	productName := field("product_name")
	if productName == "" {
		return nil, fmt.Errorf("empty product_name: %w", entity.ErrInvalidData)
	}

	quantity := 1
	if q := field("quantity"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("bad quantity %q: %w", q, entity.ErrInvalidData)
		}
		quantity = parsed
	}

	var unitPrice uint64
	if p := field("unit_price"); p != "" {
		parsed, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad unit_price %q: %w", p, entity.ErrInvalidData)
		}
		unitPrice = parsed
	}

	purchasedAt, err := parseDate(field("purchase_date"))
	if err != nil {
		return nil, err
	}

	return &entity.ImportRow{
		OrderID:          orderID,
		CustomerName:     field("customer_name"),
		ProductName:      productName,
		Quantity:         quantity,
		SKU:              field("sku"),
		UnitPrice:        unitPrice,
		PurchasedAt:      purchasedAt,
		ShippingProvider: field("shipping_provider"),
		TrackingNumber:   field("tracking_number"),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty purchase_date: %w", entity.ErrInvalidData)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad purchase_date %q: %w", s, entity.ErrInvalidData)
}

func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	// Some exports use camelCase headers.
	switch name {
	case "orderid":
		return "order_id"
	case "productname":
		return "product_name"
	case "purchasedate":
		return "purchase_date"
	case "customername":
		return "customer_name"
	case "unitprice":
		return "unit_price"
	case "shippingprovider":
		return "shipping_provider"
	case "trackingnumber":
		return "tracking_number"
	}
	return name
}
