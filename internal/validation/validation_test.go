package validation

import (
	"errors"
	"reflect"
	"testing"
)

type nested struct {
	Text    string   `json:"text" binding:"required,notblank,min=10"`
	Options []string `json:"options" binding:"required,len=4,dive,required,notblank"`
	Pick    *int     `json:"pick" binding:"required,min=0,max=3"`
}

type root struct {
	Title  string   `json:"title" binding:"required,max=5"`
	Status string   `form:"status" binding:"omitempty,oneof=submitted in_progress"`
	ID     string   `json:"id" binding:"omitempty,uuid"`
	Items  []nested `json:"items" binding:"required,min=1,dive"`
}

func TestMessages(t *testing.T) {
	three := 3
	nine := 9
	tests := []struct {
		name string
		in   root
		want []string
	}{
		{
			name: "valid",
			in: root{Title: "Quiz", Items: []nested{{
				Text: "Long enough text", Options: []string{"a", "b", "c", "d"}, Pick: &three,
			}}},
		},
		{
			name: "top level",
			in:   root{Title: "Too long", Status: "done", ID: "x"},
			want: []string{
				"title must be shorter than or equal to 5 characters",
				"status must be one of: submitted, in_progress",
				"id must be a UUID",
				"items is required",
			},
		},
		{
			name: "nested",
			in: root{Title: "Quiz", Items: []nested{{
				Text: "   ", Options: []string{"a", " ", "c"}, Pick: &nine,
			}}},
			want: []string{
				"items[0].text must not be blank",
				"items[0].options must contain exactly 4 elements",
				"items[0].pick must not be greater than 3",
			},
		},
		{
			name: "empty collection",
			in:   root{Title: "Quiz", Items: []nested{}},
			want: []string{"items must contain at least 1 elements"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if got := Messages(err); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Messages() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessagesPlainError(t *testing.T) {
	got := Messages(errors.New("unexpected EOF"))
	if len(got) != 1 || got[0] != "unexpected EOF" {
		t.Errorf("Messages() = %q", got)
	}
}

func TestGinValidatorSkipsNonStructs(t *testing.T) {
	v := &ginValidator{validate: Validator()}
	if err := v.ValidateStruct(nil); err != nil {
		t.Errorf("nil: %v", err)
	}
	if err := v.ValidateStruct(&[]root{{Title: "Quiz"}}); err == nil {
		t.Error("slice elements not validated")
	}
}
