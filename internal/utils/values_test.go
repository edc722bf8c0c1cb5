package utils

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestStringList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "comma string", body: `{"v":"parking, highway ,,night"}`, want: []string{"parking", "highway", "night"}},
		{name: "array", body: `{"v":["parking"," highway"]}`, want: []string{"parking", "highway"}},
		{name: "array with commas", body: `{"v":["a,b","c"]}`, want: []string{"a", "b", "c"}},
		{name: "empty string", body: `{"v":""}`, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				V StringList `json:"v"`
			}

			if err := json.Unmarshal([]byte(tt.body), &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if !reflect.DeepEqual([]string(out.V), tt.want) {
				t.Fatalf("got %#v, want %#v", out.V, tt.want)
			}
		})
	}
}

func TestStringList_RejectsNumbers(t *testing.T) {
	var out struct {
		V StringList `json:"v"`
	}

	if err := json.Unmarshal([]byte(`{"v":12}`), &out); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFlexString_UnmarshalJSON(t *testing.T) {
	var out struct {
		Age   FlexString `json:"age"`
		Terms FlexString `json:"terms"`
		Phone FlexString `json:"phone"`
	}

	body := `{"age": 21, "terms": true, "phone": " 9876543210 "}`
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out.Age.String() != "21" || out.Terms.String() != "true" || out.Phone.String() != "9876543210" {
		t.Fatalf("unexpected values: %+v", out)
	}
}

func TestIsUUID(t *testing.T) {
	if !IsUUID("e42b6ed3-0af3-49f0-9dcd-37aa7ed8c980") {
		t.Fatalf("expected valid uuid")
	}
	if IsUUID("not-a-uuid") {
		t.Fatalf("expected invalid uuid")
	}
}
