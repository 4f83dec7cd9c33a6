package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ecurie/core"
	"github.com/trezcool/ecurie/core/training"
)

func TestRollbarLogger_prepare(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{TestMode: true})

	errBoom := errors.New("boom")
	amy := training.Actor{ID: "amy", Role: training.RoleTrainee}
	ben := training.Actor{ID: "ben", Role: training.RoleAdmin}

	tests := []struct {
		name string
		args []interface{}
		want []interface{}
	}{
		{
			name: "no actor",
			args: []interface{}{errBoom},
			want: []interface{}{"msg", errBoom},
		},
		{
			name: "role goes to custom data",
			args: []interface{}{errBoom, amy},
			want: []interface{}{"msg", errBoom, map[string]interface{}{actorRoleKey: "trainee"}},
		},
		{
			name: "merged with caller data, first actor wins",
			args: []interface{}{map[string]interface{}{"classID": "c1"}, amy, ben},
			want: []interface{}{"msg", map[string]interface{}{"classID": "c1", actorRoleKey: "trainee"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.prepare("msg", tt.args))
		})
	}

	caller := map[string]interface{}{"classID": "c1"}
	logger.prepare("msg", []interface{}{caller, amy})
	assert.Equal(t, map[string]interface{}{"classID": "c1"}, caller, "caller data must not be modified")
}
