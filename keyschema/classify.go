package keyschema

import (
	"context"
	"strconv"

	"github.com/jonwraymond/credcache/observe"
	"github.com/jonwraymond/credcache/omap"
)

// CacheType is the raw type code of a cached entry.
type CacheType int

// Raw cache entry type codes.
const (
	CacheTypeUnknown CacheType = 0

	CacheTypeADFS    CacheType = 1001
	CacheTypeMSA     CacheType = 1002
	CacheTypeMSSTS   CacheType = 1003
	CacheTypeGeneric CacheType = 1004

	CacheTypeAccessToken  CacheType = 2001
	CacheTypeRefreshToken CacheType = 2002
	CacheTypeIDToken      CacheType = 2003

	CacheTypeAppMetadata CacheType = 3001
)

// SchemaFamily is the broad category a cached entry belongs to.
type SchemaFamily string

const (
	SchemaFamilyAccount     SchemaFamily = "Account"
	SchemaFamilyCredential  SchemaFamily = "Credential"
	SchemaFamilyAppMetadata SchemaFamily = "AppMetadata"
)

var cacheTypeNames = omap.FromPairs(
	omap.Pair[CacheType, string]{Key: CacheTypeADFS, Value: "ADFS"},
	omap.Pair[CacheType, string]{Key: CacheTypeMSA, Value: "MSA"},
	omap.Pair[CacheType, string]{Key: CacheTypeMSSTS, Value: "MSSTS"},
	omap.Pair[CacheType, string]{Key: CacheTypeGeneric, Value: "GENERIC"},
	omap.Pair[CacheType, string]{Key: CacheTypeAccessToken, Value: "ACCESS_TOKEN"},
	omap.Pair[CacheType, string]{Key: CacheTypeRefreshToken, Value: "REFRESH_TOKEN"},
	omap.Pair[CacheType, string]{Key: CacheTypeIDToken, Value: "ID_TOKEN"},
	omap.Pair[CacheType, string]{Key: CacheTypeAppMetadata, Value: "APP_METADATA"},
)

var cacheTypesByName = omap.Swap(cacheTypeNames)

func (t CacheType) String() string {
	if name, ok := cacheTypeNames.Get(t); ok {
		return name
	}
	return "CacheType(" + strconv.Itoa(int(t)) + ")"
}

// ParseCacheType returns the code with the given name, e.g. "REFRESH_TOKEN".
func ParseCacheType(name string) (CacheType, bool) {
	return cacheTypesByName.Get(name)
}

// CacheTypes returns every known code in ascending order.
func CacheTypes() []CacheType {
	return cacheTypeNames.Keys()
}

// Classify maps a raw entry type code to its schema family. For codes outside
// the known set it returns false and writes one warning to logger; callers
// should skip such entries. A nil logger is silent.
func Classify(ctx context.Context, code CacheType, logger observe.Logger) (SchemaFamily, bool) {
	switch code {
	case CacheTypeADFS, CacheTypeMSA, CacheTypeMSSTS, CacheTypeGeneric:
		return SchemaFamilyAccount, true

	case CacheTypeAccessToken, CacheTypeRefreshToken, CacheTypeIDToken:
		return SchemaFamilyCredential, true

	case CacheTypeAppMetadata:
		return SchemaFamilyAppMetadata, true

	default:
		if logger != nil {
			logger.Warn(ctx, "invalid cache type", observe.Field{Key: "cache_type", Value: int(code)})
		}
		return "", false
	}
}
