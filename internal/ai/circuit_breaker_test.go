package ai

import (
	"testing"
	"time"

	"talentscan/internal/config"

	"google.golang.org/genai"
)

func TestIndependentCircuitBreakerConfigurations(t *testing.T) {
	// Each AI operation gets its own circuit breaker configuration

	extractConfig := &config.AIOperationConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}

	skillsConfig := &config.AIOperationConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash-lite",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,                // Different from extract
			Interval:         30 * time.Second, // Different from extract
			Timeout:          45 * time.Second, // Different from extract
			MinRequests:      2,                // Different from extract
			FailureThreshold: 0.7,              // Different from extract
		},
	}

	extractCB := NewAICircuitBreaker("Extract", extractConfig, nil)
	skillsCB := NewAICircuitBreaker("Skills", skillsConfig, nil)

	t.Run("ExtractCircuitBreaker", func(t *testing.T) {
		stats := extractCB.GetStats()

		name, ok := stats["name"].(string)
		if !ok {
			t.Fatal("Circuit breaker name not found")
		}

		expectedName := "AI-Extract"
		if name != expectedName {
			t.Errorf("Expected circuit breaker name '%s', got '%s'", expectedName, name)
		}

		state, ok := stats["state"].(string)
		if !ok {
			t.Fatal("Circuit breaker state not found")
		}
		if state != "closed" {
			t.Errorf("Expected initial state 'closed', got '%s'", state)
		}

		enabled, ok := stats["enabled"].(bool)
		if !ok {
			t.Fatal("Circuit breaker enabled status not found")
		}
		if !enabled {
			t.Error("Circuit breaker should be enabled")
		}
	})

	t.Run("SkillsCircuitBreaker", func(t *testing.T) {
		stats := skillsCB.GetStats()

		name, ok := stats["name"].(string)
		if !ok {
			t.Fatal("Circuit breaker name not found")
		}

		expectedName := "AI-Skills"
		if name != expectedName {
			t.Errorf("Expected circuit breaker name '%s', got '%s'", expectedName, name)
		}
	})

	t.Run("IndependentInstances", func(t *testing.T) {
		if extractCB == skillsCB {
			t.Error("Extract and skills circuit breakers should be different instances")
		}
	})

	t.Run("IndependentHealthStates", func(t *testing.T) {
		if !extractCB.IsHealthy() {
			t.Error("Extract circuit breaker should be healthy initially")
		}
		if !skillsCB.IsHealthy() {
			t.Error("Skills circuit breaker should be healthy initially")
		}
	})
}

func TestEmbedCircuitBreaker(t *testing.T) {
	embedConfig := &config.EmbeddingConfig{
		Model:     "gemini-embedding-001",
		Dimension: 1536,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			MinRequests:      5,
			FailureThreshold: 0.6,
		},
	}

	cb := NewEmbedCircuitBreaker(embedConfig, nil)
	if cb == nil {
		t.Fatal("Embed circuit breaker should not be nil when enabled")
	}

	stats := cb.GetStats()
	name, ok := stats["name"].(string)
	if !ok {
		t.Fatal("Circuit breaker name not found")
	}
	if name != "AI-embed" {
		t.Errorf("Expected circuit breaker name 'AI-embed', got '%s'", name)
	}

	if !cb.IsHealthy() {
		t.Error("Embed circuit breaker should be healthy initially")
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	disabledConfig := &config.AIOperationConfig{
		Provider: "gemini",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled: false,
		},
	}

	cb := NewAICircuitBreaker("Disabled", disabledConfig, nil)
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	// A nil breaker still executes the function directly
	called := false
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return nil, nil
	})
	if err != nil {
		t.Errorf("Disabled circuit breaker should pass through, got error: %v", err)
	}
	if !called {
		t.Error("Disabled circuit breaker should still execute the function")
	}
}
