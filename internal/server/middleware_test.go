package server

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(3, 50*time.Millisecond)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if !rl.Allow("ana") {
			t.Fatalf("requisição %d bloqueada dentro do limite", i+1)
		}
	}
	if rl.Allow("ana") {
		t.Error("quarta requisição passou acima do limite")
	}

	// Other keys have independent budgets.
	if !rl.Allow("bia") {
		t.Error("chave independente bloqueada")
	}

	// The window slides: after it elapses the key can send again.
	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("ana") {
		t.Error("requisição bloqueada após a janela expirar")
	}
}
