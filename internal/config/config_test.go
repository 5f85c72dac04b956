package config

import (
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	type want struct {
		runAddress string
		backendURL string
	}

	tests := []struct {
		name  string
		env   map[string]string
		flags []string
		want  want
	}{
		{
			name:  "defaults",
			env:   map[string]string{},
			flags: []string{},
			want: want{
				runAddress: "localhost:8080",
				backendURL: "http://127.0.0.1:8000/api/v1",
			},
		},
		{
			name: "env only",
			env: map[string]string{
				"RUN_ADDRESS":     "localhost:9999",
				"BACKEND_API_URL": "http://backend:8000/api/v1",
			},
			flags: []string{},
			want: want{
				runAddress: "localhost:9999",
				backendURL: "http://backend:8000/api/v1",
			},
		},
		{
			name: "flags only",
			env:  map[string]string{},
			flags: []string{
				"-a", "localhost:7777",
				"-b", "http://flag-backend:9000/api/v1",
			},
			want: want{
				runAddress: "localhost:7777",
				backendURL: "http://flag-backend:9000/api/v1",
			},
		},
		{
			name: "env overrides flags",
			env: map[string]string{
				"RUN_ADDRESS":     "env:9000",
				"BACKEND_API_URL": "http://env-backend:8000/api/v1",
			},
			flags: []string{
				"-a", "flag:8000",
				"-b", "http://flag-backend:9000/api/v1",
			},
			want: want{
				runAddress: "env:9000",
				backendURL: "http://env-backend:8000/api/v1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			os.Args = append([]string{"test"}, tt.flags...)

			cfg, err := Parse()
			require.NoError(t, err)

			assert.Equal(t, tt.want.runAddress, cfg.RunAddress)
			assert.Equal(t, tt.want.backendURL, cfg.BackendURL)
		})
	}
}
