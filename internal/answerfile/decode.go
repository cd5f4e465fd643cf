package answerfile

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/hogwarts-cloud/hpcctl/internal/errs"
	"github.com/hogwarts-cloud/hpcctl/internal/keyfile"
	"github.com/hogwarts-cloud/hpcctl/internal/log"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// The blank hook must run last: it turns data into nil, which the following
// hooks of a composition cannot inspect.
var decodeHook = mapstructure.ComposeDecodeHookFunc(
	stringToFieldsHook,
	mapstructure.TextUnmarshallerHookFunc(),
	stringToUintHook,
	blankToNilHook,
)

// decodeGroup decodes the keys of group into out one at a time, so a parse
// failure names the offending key.
func decodeGroup(keyFile *keyfile.KeyFile, group string, out any) error {
	values, err := keyFile.Group(group)
	if err != nil {
		return errs.NotFound(group, "", err)
	}

	var metadata mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: decodeHook,
		Metadata:   &metadata,
		Result:     out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	keys := lo.Keys(values)
	slices.Sort(keys)

	for _, key := range keys {
		if err := decoder.Decode(map[string]string{key: values[key]}); err != nil {
			return errs.Parse(group, key, err)
		}
	}

	for _, key := range metadata.Unused {
		log.Debug("ignoring unknown key", "section", group, "key", key)
	}

	return nil
}

// stringToFieldsHook splits comma or space separated lists.
func stringToFieldsHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}

	return strings.FieldsFunc(data.(string), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}), nil
}

// stringToUintHook parses base 10 only, so "08" is eight.
func stringToUintHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(strings.TrimSpace(data.(string)), 10, to.Bits())
	}

	return data, nil
}

// blankToNilHook leaves non-string optional fields unset on blank values.
// Optional strings keep the empty value.
func blankToNilHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Pointer || to.Elem().Kind() == reflect.String {
		return data, nil
	}

	if strings.TrimSpace(data.(string)) == "" {
		return nil, nil
	}

	return data, nil
}
