// Package controller hosts the list engine.
//
// A Controller owns the list store, the execution engine, the list file
// codec, a simulated channel dispatcher and the error queue. Every
// operation takes the controller's lock, so commands from a console or
// remote interface are serialized with the real-time tick loop started by
// Run.
//
// Typical use:
//
//	cfg, _ := config.Load("psu.yaml")
//	ctrl, _ := controller.New(cfg)
//	ctrl.SetList(1, list.KindVoltage, []float64{1, 2, 3})
//	...
//	ctrl.Start(1)
//	go ctrl.Run(ctx)
package controller
