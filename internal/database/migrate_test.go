package database

import "testing"

func TestWithoutPoolParams(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "drops pool settings",
			in:   "postgres://u:p@localhost:5432/shop?sslmode=disable&pool_max_conns=25&pool_min_conns=5",
			want: "postgres://u:p@localhost:5432/shop?sslmode=disable",
		},
		{
			name: "keeps urls without pool settings",
			in:   "postgres://u:p@localhost:5432/shop",
			want: "postgres://u:p@localhost:5432/shop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withoutPoolParams(tt.in); got != tt.want {
				t.Errorf("withoutPoolParams() = %q, want %q", got, tt.want)
			}
		})
	}
}
