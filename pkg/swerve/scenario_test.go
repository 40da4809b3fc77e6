package swerve

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRotateInPlace(t *testing.T) {
	Convey("Given four aligned units in the default chain order", t, func() {
		c, rigs := newRigChain(t, DefaultOrientConfig(), allRoles...)
		alignAll(rigs)
		resetCounts(rigs)

		Convey("When the heading is 40 ticks short of the target", func() {
			done := c.Orient(1040, 1000)
			c.ApplySpeed()

			Convey("Orient is not done", func() {
				So(done, ShouldBeFalse)
			})
			Convey("Only the front-right and rear-left speeds are inverted", func() {
				for _, r := range rigs {
					switch r.unit.Role() {
					case FrontRight, RearLeft:
						So(r.speed.inverted, ShouldBeTrue)
					default:
						So(r.speed.inverted, ShouldBeFalse)
					}
				}
			})
			Convey("Every unit drives at the spin speed", func() {
				for _, r := range rigs {
					So(r.speed.outputs, ShouldResemble, []float64{0.2, 0.2})
				}
			})

			Convey("And the heading then comes within the converge deadband", func() {
				resetCounts(rigs)
				done := c.Orient(1040, 1037)

				Convey("Orient is done and leaves the inverts alone", func() {
					So(done, ShouldBeTrue)
					for _, r := range rigs {
						So(r.speed.invertCalls, ShouldEqual, 0)
						So(r.speed.outputs, ShouldBeEmpty)
					}
				})

				Convey("ResetInvert restores the configured directions", func() {
					c.ResetInvert()
					c.ClearReadyToOrient()
					for _, r := range rigs {
						So(r.speed.inverted, ShouldBeFalse)
						So(r.unit.ReadyToOrient(), ShouldBeFalse)
					}
				})
			})
		})

		Convey("When no heading is requested", func() {
			So(c.Orient(NoInput, 0), ShouldBeTrue)
			for _, r := range rigs {
				So(r.direction.outputs, ShouldBeEmpty)
			}
		})
	})
}
