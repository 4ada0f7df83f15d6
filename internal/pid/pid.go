// Package pid implements a single-axis PID controller with a clamped
// integral term.
package pid

// Gains configures a Controller. Limit bounds the accumulated integral
// symmetrically to [-Limit, Limit].
type Gains struct {
	Kp    float64
	Ki    float64
	Kd    float64
	Limit float64
}

// Controller is a discrete PID controller for one axis. It is not safe for
// concurrent use; each axis owns its own instance.
type Controller struct {
	gains     Gains
	integral  float64
	prevError float64
}

// New creates a Controller with zeroed state.
func New(g Gains) *Controller {
	if g.Limit < 0 {
		g.Limit = -g.Limit
	}
	return &Controller{gains: g}
}

// Update advances the controller by dt seconds and returns the control output.
// A non-positive dt contributes no derivative term.
func (c *Controller) Update(setpoint, measured, dt float64) float64 {
	err := setpoint - measured

	c.integral += err * dt
	if c.integral > c.gains.Limit {
		c.integral = c.gains.Limit
	} else if c.integral < -c.gains.Limit {
		c.integral = -c.gains.Limit
	}

	var derivative float64
	if dt > 0 {
		derivative = (err - c.prevError) / dt
	}
	c.prevError = err

	return c.gains.Kp*err + c.gains.Ki*c.integral + c.gains.Kd*derivative
}

// Reset clears the integral and previous error.
func (c *Controller) Reset() {
	c.integral = 0
	c.prevError = 0
}

// Integral returns the accumulated integral term.
func (c *Controller) Integral() float64 {
	return c.integral
}

// Gains returns the controller configuration.
func (c *Controller) Gains() Gains {
	return c.gains
}
