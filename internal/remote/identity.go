package remote

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/han8909227/avatax-go/internal/model"
)

const (
	ClientHeaderName = "X-Avalara-Client"
	SDKName          = "Go SDK"
	SDKVersion       = "18.5.2"
)

// Identity describes the calling application. Every field is optional.
type Identity struct {
	AppName     string
	AppVersion  string
	MachineName string
}

// Validate rejects values that cannot be sent in a header.
func (i Identity) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"app_name", i.AppName},
		{"app_version", i.AppVersion},
		{"machine_name", i.MachineName},
	}
	for _, f := range fields {
		if err := checkHeaderText(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// ClientHeader renders the X-Avalara-Client value.
func (i Identity) ClientHeader() string {
	return fmt.Sprintf("%s; %s; %s; %s; %s;", i.AppName, i.AppVersion, SDKName, SDKVersion, i.MachineName)
}

func checkHeaderText(field, value string) error {
	if strings.IndexFunc(value, unicode.IsControl) >= 0 {
		return model.NewArgumentError(field, value, "must be plain text without control characters")
	}
	return nil
}
