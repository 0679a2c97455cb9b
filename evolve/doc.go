// Package evolve provides a generational evolutionary engine for agents whose
// policy is a fixed set of linear classifiers.
//
// Each generation the engine issues a Population of genomes. The caller binds
// every slot to an agent, runs the episodes and reports one fitness per slot.
// Once every slot has reported, the engine ranks the entries, updates the
// all-time best record and breeds the next generation by elitism, tournament
// selection, arithmetic crossover and mutation.
//
// Basic usage:
//
//	// Load configuration
//	config, err := evolve.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	engine, err := evolve.NewEngine(config)
//	if err != nil {
//		log.Fatalf("Error creating engine: %v", err)
//	}
//
//	// Run for 100 generations with your fitness function
//	pop := engine.InitialPopulation()
//	for i := 0; i < 100; i++ {
//		pop, err = engine.RunGeneration(ctx, pop, 0, evaluate)
//		if err != nil {
//			log.Fatalf("Error running generation: %v", err)
//		}
//	}
//
//	// Keep the best genome for a later replay
//	_ = engine.SaveBest(ctx, store.NewFileStore("brains"), "best")
//
// The store subpackage holds the genome persistence backends, policy turns a
// genome into steering decisions and report carries the run telemetry.
package evolve
