package common

import (
	"encoding/binary"
	"encoding/json"
	"os"

	uuid "github.com/satori/go.uuid"
)

const MaxUintEncodeByte = 8

func GetUniqueIDFromUUID() string {
	return uuid.Must(uuid.NewV1(), nil).String()
}

func GetENVValue(key, defaultValue string) (v string) {
	var found bool
	if v, found = os.LookupEnv(key); !found {
		return defaultValue
	}

	return
}

func InStringArray(a []string, s string) (index int, found bool) {
	var h string
	for index, h = range a {
		found = h == s
		if found {
			return
		}
	}

	index = -1
	return
}

func MustMarshalJSON(o interface{}) []byte {
	b, _ := json.Marshal(o)
	return b
}

func EncodeUint64ToByteSlice(i uint64) [MaxUintEncodeByte]byte {
	var b [MaxUintEncodeByte]byte
	binary.BigEndian.PutUint64(b[:], i)
	return b
}
