// Package confloader loads configuration with koanf and watches the
// configuration file for changes.
//
// Sources, lowest to highest priority:
//
//  1. Values already present in the target struct (defaults)
//  2. The YAML configuration file
//  3. Environment variables
//  4. Maps loaded with LoadMap (flags, tests)
//
// Environment variables use the QUIZRALLY_ prefix. A double underscore
// separates nesting levels and a single underscore is kept, so
// QUIZRALLY_STORAGE__BATCH_INTERVAL sets storage.batch_interval.
package confloader
