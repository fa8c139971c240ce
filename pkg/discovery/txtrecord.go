package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeDaemonTXT creates TXT records for daemon discovery.
func EncodeDaemonTXT(info *DaemonInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyVersion] = strconv.FormatUint(uint64(info.Version), 10)

	if info.DaemonName != "" {
		txt[TXTKeyDaemonName] = info.DaemonName
	}
	if info.AdapterCount > 0 {
		txt[TXTKeyAdapterCount] = strconv.FormatUint(uint64(info.AdapterCount), 10)
	}
	if info.Serial != "" {
		txt[TXTKeySerial] = info.Serial
	}

	return txt
}

// DecodeDaemonTXT parses TXT records from daemon discovery.
func DecodeDaemonTXT(txt TXTRecordMap) (*DaemonInfo, error) {
	info := &DaemonInfo{}

	verStr, ok := txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	ver, err := strconv.ParseUint(verStr, 10, 8)
	if err != nil || ver == 0 {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeyVersion, verStr)
	}
	info.Version = uint8(ver)

	info.DaemonName = txt[TXTKeyDaemonName]
	info.Serial = txt[TXTKeySerial]

	if acStr, ok := txt[TXTKeyAdapterCount]; ok {
		ac, err := strconv.ParseUint(acStr, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeyAdapterCount, acStr)
		}
		info.AdapterCount = uint8(ac)
	}

	return info, nil
}

// TXTRecordsToStrings converts a TXT record map to "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXT record map.
// Entries without "=" are ignored.
func StringsToTXTRecords(records []string) TXTRecordMap {
	txt := make(TXTRecordMap, len(records))
	for _, record := range records {
		key, value, found := strings.Cut(record, "=")
		if !found || key == "" {
			continue
		}
		txt[key] = value
	}
	return txt
}
