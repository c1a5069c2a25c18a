// Package slug genera identificadores estables a partir de nombres libres.
// Los IDs de almacenes y categorías son slugs legibles ("bodega-central") en vez
// de UUIDs, para que sobrevivan a exportaciones e imports entre entornos.
package slug

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizer descompone acentos y elimina las marcas diacríticas ("almacén" → "almacen").
var normalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make convierte un nombre libre en slug: sin diacríticos, minúsculas, runs de
// caracteres no alfanuméricos colapsados a '-'. Si no queda nada utilizable
// (p. ej. nombres íntegramente en CJK) devuelve fallback.
func Make(value, fallback string) string {
	folded, _, err := transform.String(normalizer, strings.TrimSpace(value))
	if err != nil {
		folded = strings.TrimSpace(value)
	}
	var b strings.Builder
	lastDash := true // evita '-' inicial
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return fallback
	}
	return out
}

// Next desambigua un slug contra los ya existentes añadiendo sufijos -2, -3, ...
func Next(base string, existing map[string]bool) string {
	if !existing[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !existing[candidate] {
			return candidate
		}
	}
}
