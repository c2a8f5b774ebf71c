package lot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dateLayout es el formato de fecha dentro del número de lote (YYYYMMDD).
const dateLayout = "20060102"

// Sufijos de los lotes hijos al dividir un lote por venta parcial.
const (
	SuffixSold      = "S1"
	SuffixRemainder = "S2"
)

// SerialNumber construye el identificador de un serial: "{numeroLote}-{secuencia}".
// La secuencia es 1-based dentro del lote que originó el serial.
func SerialNumber(lotNumber string, seq int) string {
	return lotNumber + "-" + strconv.Itoa(seq)
}

// NormalizeProductCode deja el código apto para números de lote: sin tildes, en mayúsculas
// y con los espacios internos reemplazados por guiones.
func NormalizeProductCode(code string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	clean, _, err := transform.String(t, code)
	if err != nil {
		clean = code
	}
	return strings.ToUpper(strings.Join(strings.Fields(clean), "-"))
}

// DateKey devuelve la porción de fecha del número de lote.
func DateKey(date time.Time) string {
	return date.Format(dateLayout)
}

// FormatLotNumber arma el número de lote para la n-ésima generación (1-based) de un producto en una fecha.
// El primero del día no lleva contador: "CODE-20240115"; los siguientes agregan "-02", "-03", ...
func FormatLotNumber(productCode string, date time.Time, n int64) string {
	base := NormalizeProductCode(productCode) + "-" + DateKey(date)
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%02d", base, n)
}

// SplitLotNumber devuelve el número del lote hijo: el padre más el sufijo S1 (vendido) o S2 (remanente).
func SplitLotNumber(parent, suffix string) string {
	return parent + suffix
}
