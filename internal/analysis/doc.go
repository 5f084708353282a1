// Package analysis derives catalytic performance metrics from a standardized
// run and a reaction definition: conversion of the feed, yield and selectivity
// per product group, and the total-area series used for carbon-balance checks.
//
// All calculations are pure and recomputed from scratch on every call.
// Division by a zero total area or a zero conversion produces NaN in the
// affected cells rather than an error; downstream writers render NaN as an
// empty cell.
package analysis
