package thread

import "testing"

func TestScopeKey(t *testing.T) {
	tests := []struct {
		name  string
		scope Scope
		want  string
	}{
		{
			name:  "war room with mode",
			scope: Scope{Room: RoomWarRoom, Mode: "planning", SessionID: "abc"},
			want:  "planning-abc",
		},
		{
			name:  "war room without mode",
			scope: Scope{Room: RoomWarRoom, SessionID: "abc"},
			want:  "default-abc",
		},
		{
			name:  "missions with mission",
			scope: Scope{Room: RoomMissions, Mission: "m-42", SessionID: "abc"},
			want:  "m-42-abc",
		},
		{
			name:  "missions without mission",
			scope: Scope{Room: RoomMissions, SessionID: "abc"},
			want:  "default-abc",
		},
		{
			name:  "empty session falls back to default",
			scope: Scope{Room: RoomWarRoom, Mode: "planning"},
			want:  "planning-default",
		},
		{
			name:  "zero scope",
			scope: Scope{},
			want:  "default-default",
		},
		{
			name:  "mode is ignored on the missions surface",
			scope: Scope{Room: RoomMissions, Mode: "planning", SessionID: "abc"},
			want:  "default-abc",
		},
		{
			name:  "mission is ignored in the war room",
			scope: Scope{Room: RoomWarRoom, Mission: "m-42", SessionID: "abc"},
			want:  "default-abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scope.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScopeKeyIsDeterministic(t *testing.T) {
	scope := Scope{Room: RoomMissions, Mission: "alpha", SessionID: "s1"}
	first := scope.Key()
	for i := 0; i < 10; i++ {
		if got := scope.Key(); got != first {
			t.Fatalf("Key() not stable: got %q, want %q", got, first)
		}
	}
}
