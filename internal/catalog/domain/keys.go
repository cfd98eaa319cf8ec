package domain

// Store keys, partitioned by currency.
const (
	primaryKeyPrefix   = "products_all_"
	secondaryKeyPrefix = "products_all_secondary_"
	guardKeyPrefix     = "request_semaphore_"
)

func PrimaryKey(currency string) string   { return primaryKeyPrefix + currency }
func SecondaryKey(currency string) string { return secondaryKeyPrefix + currency }
func GuardKey(currency string) string     { return guardKeyPrefix + currency }

// IsCatalogKey reports whether key belongs to the snapshot cache or its guard.
func IsCatalogKey(key string) bool {
	for _, prefix := range []string{secondaryKeyPrefix, primaryKeyPrefix, guardKeyPrefix} {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
