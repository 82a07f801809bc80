package mq

import (
	"encoding/json"
	"errors"

	"github.com/kcidb/kcidb-go/pkg/report"
)

// Encode validates data against any supported schema version, upgrades it
// to the latest version and serializes it into a message body.
func Encode(data report.Data) ([]byte, error) {
	if err := report.Validate(data); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	upgraded, err := report.Upgrade(data)
	if err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	return json.Marshal(upgraded)
}

// Decode deserializes a message body and upgrades it to the latest schema
// version. A body that upgrades into invalid latest data is reported as
// ErrInconsistent.
func Decode(body []byte) (report.Data, error) {
	var data report.Data
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	if err := report.Validate(data); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	if err := report.UpgradeInPlace(data); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	if err := report.ValidateLatest(data); err != nil {
		return nil, errors.Join(ErrInconsistent, err)
	}
	return data, nil
}
