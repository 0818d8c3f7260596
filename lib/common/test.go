// Provide test utilities for the common package
package common

import (
	"github.com/ulule/limiter"
)

// Initialize a new config object for unittests
func NewTestConfig() Config {
	p := NewConfig([]byte("feedback-unittest"))

	// unittests hammer the api from one address
	p.RateLimitRuleAPI = NewRateLimitRule(limiter.Rate{Period: RateLimitAPI.Period, Limit: 100000})

	return p
}
