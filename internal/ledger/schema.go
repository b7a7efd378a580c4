package ledger

import (
	"fmt"
	"reflect"
	"strings"
)

// Field describes one persisted position attribute: the Go field it comes
// from, the storage key it is written under, and its document type.
type Field struct {
	Name string
	Key  string
	Type string
}

// Schema is the authoritative table of persisted position fields. It is
// validated once at startup against the Position struct so a renamed tag or
// dropped field fails fast instead of silently writing bad documents.
var Schema = []Field{
	{"Symbol", "symbol", "string"},
	{"LastPrice", "lastPrice", "float64"},
	{"BuyPrice", "buyPrice", "float64"},
	{"ClosePrice", "closePrice", "float64"},
	{"Quantity", "qty", "int"},
	{"EntryDate", "datePulled", "string"},
	{"Delta", "delta", "float64"},
	{"Gamma", "gamma", "float64"},
	{"Theta", "theta", "float64"},
	{"Vega", "vega", "float64"},
	{"Volatility", "volatility", "float64"},
	{"Commission", "commission", "float64"},
	{"BuyNotional", "buyNotional", "float64"},
	{"CurrentNotional", "currentNotional", "float64"},
	{"UnrealizedPnL", "unrealizedPnL", "float64"},
	{"RealizedPnL", "realizedPnL", "float64"},
	{"Status", "openClose", "string"},
}

// ValidateSchema checks the schema table against the Position struct:
// every row must match a struct field, its json tag, and its Go type, and
// storage keys must be unique.
func ValidateSchema() error {
	t := reflect.TypeOf(Position{})
	seen := make(map[string]bool, len(Schema))
	for _, f := range Schema {
		if seen[f.Key] {
			return fmt.Errorf("schema: duplicate storage key %q", f.Key)
		}
		seen[f.Key] = true

		sf, ok := t.FieldByName(f.Name)
		if !ok {
			return fmt.Errorf("schema: no Position field named %q", f.Name)
		}
		tag := strings.Split(sf.Tag.Get("json"), ",")[0]
		if tag != f.Key {
			return fmt.Errorf("schema: field %s stored as %q, schema says %q", f.Name, tag, f.Key)
		}
		if sf.Type.Kind().String() != f.Type {
			return fmt.Errorf("schema: field %s is %s, schema says %s", f.Name, sf.Type.Kind(), f.Type)
		}
	}
	if len(Schema) != t.NumField() {
		return fmt.Errorf("schema: %d rows for %d Position fields", len(Schema), t.NumField())
	}
	return nil
}
