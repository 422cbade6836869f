// Package hocr generates hOCR, the HTML-based standard format for
// representing OCR results, from text annotation responses.
//
// This package provides:
//
// - A small object model for the hOCR hierarchy used here
// - Conversion of a corrected annotation response into that model
// - Functions for generating valid hOCR HTML from the model
//
// The hierarchy is Document → Pages → Lines → Words, with bounding boxes
// at each level. Words keep the (corrected) text of their annotation and
// the box of its bounding polygon; lines are formed from words that share
// a vertical band.
//
// Main Functions:
//
// - FromAnnotations: Builds an HOCR document from an annotation response
// - GenerateHOCRDocument: Generates hOCR HTML from the object model
// - ExtractHOCRText: Returns the plain text of a document, one line per line
package hocr
