// Command gantry scaffolds agent integrations from validated blueprints and
// walks them through a staged approval workflow.
package main
