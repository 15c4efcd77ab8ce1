// Package output provides deterministic JSON/YAML serialization of AFM
// documents and the destinations they are written to.
//
//   - Serialization (serializer.go): canonical JSON with sorted keys and
//     YAML via sigs.k8s.io/yaml, single or multi-document.
//
//   - Writers (writer.go): the [Writer] interface with [StdoutWriter] and
//     [FileWriter] implementations.
//
//   - Formats (registry.go): name to serializer lookup for --format.
package output
