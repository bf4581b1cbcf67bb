package leveldb

import (
	"fmt"
	"time"

	"github.com/aretw0/lintas/pkg/core"
)

// Key layout:
//
//	meta/<store>/version                  schema version (decimal)
//	meta/<store>/index/<index>            live index definition (JSON)
//	rec/<store>/<id>                      dataset record (JSON)
//	idx/<store>/<index>/<value>\x00<id>   index entry (empty value)
//
// Every key carries the store name, so collections sharing a directory keep
// independent schemas.
const indexSep = "\x00"

// uploadDateLayout is fixed width so that lexical key order is chronological.
const uploadDateLayout = "2006-01-02T15:04:05.000000000Z"

func recordPrefix(store string) []byte {
	return []byte("rec/" + store + "/")
}

func recordKey(store, id string) []byte {
	return []byte("rec/" + store + "/" + id)
}

func indexPrefix(store string, idx core.Index) []byte {
	return []byte("idx/" + store + "/" + string(idx) + "/")
}

func indexValuePrefix(store string, idx core.Index, value string) []byte {
	return []byte("idx/" + store + "/" + string(idx) + "/" + value + indexSep)
}

func indexKey(store string, idx core.Index, value, id string) []byte {
	return []byte("idx/" + store + "/" + string(idx) + "/" + value + indexSep + id)
}

func metaVersionKey(store string) []byte {
	return []byte("meta/" + store + "/version")
}

func metaIndexPrefix(store string) []byte {
	return []byte("meta/" + store + "/index/")
}

func metaIndexKey(store string, idx core.Index) []byte {
	return []byte("meta/" + store + "/index/" + string(idx))
}

// idFromIndexKey extracts the dataset ID from an index entry key.
func idFromIndexKey(key []byte) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == indexSep[0] {
			return string(key[i+1:])
		}
	}
	return ""
}

// encodeYear maps a year onto a fixed-width string whose lexical order matches
// numeric order, negative years included.
func encodeYear(year int) string {
	return fmt.Sprintf("%020d", uint64(int64(year))^(1<<63))
}

func encodeUploadDate(t time.Time) string {
	return t.UTC().Format(uploadDateLayout)
}

// indexValue returns the encoded index value of d for idx. Indexes over names
// other than the known fields read the payload.
func indexValue(d core.Dataset, idx core.Index) (string, bool) {
	switch idx {
	case core.IndexCategory:
		return d.Category, true
	case core.IndexYear:
		return encodeYear(d.Year), true
	case core.IndexUploadDate:
		return encodeUploadDate(d.UploadDate), true
	case core.FieldTitle:
		return d.Title, true
	case core.FieldDescription:
		return d.Description, true
	}
	v, ok := d.Payload[string(idx)]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}
