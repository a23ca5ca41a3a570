// Package channel describes the power supply's output channels.
//
// Channels are addressed by a 1-based ID. Each channel carries static limits
// (voltage, current, power) and present setpoints. The Simulator in this
// package stands in for the hardware dispatcher: it stores setpoints and
// reports the configured limits, which is all the list engine needs.
package channel
