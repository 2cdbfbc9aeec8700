package wire

// TableID identifies a table's record kind, mirroring Apple's
// CSSM_DL_DB_RECORD_* constants used throughout the legacy Security
// framework.
type TableID uint32

const (
	TableSchema             TableID = 0x00000000
	TableSchemaInfo         TableID = 0x00000001
	TableSchemaIndexes      TableID = 0x00000002
	TableSchemaAttributes   TableID = 0x00000003
	TableSchemaParsingModule TableID = 0x00000004
	TableGenericPassword    TableID = 0x80001000
	TableInternetPassword   TableID = 0x80001001
	TableAppleSharePassword TableID = 0x80001002
	TableX509Certificate    TableID = 0x80001003
	TableX509CRL            TableID = 0x80001004
	TableUnlockReferral     TableID = 0x80001005
	TableExtendedAttribute  TableID = 0x80001006
	TablePublicKey          TableID = 0x0000000A
	TablePrivateKey         TableID = 0x0000000B
	TableSymmetricKey       TableID = 0x0000000C
	TableMetadata           TableID = 0x80008000
)

// String renders a TableID using its conventional name where known.
func (t TableID) String() string {
	switch t {
	case TableSchema:
		return "Schema"
	case TableGenericPassword:
		return "GenericPassword"
	case TableInternetPassword:
		return "InternetPassword"
	case TableAppleSharePassword:
		return "AppleSharePassword"
	case TableX509Certificate:
		return "X509Certificate"
	case TablePublicKey:
		return "PublicKey"
	case TablePrivateKey:
		return "PrivateKey"
	case TableSymmetricKey:
		return "SymmetricKey"
	case TableMetadata:
		return "Metadata"
	default:
		return "Unknown"
	}
}
