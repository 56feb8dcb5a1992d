// Command u3ddump decodes a U3D file and prints a summary of its scene
// graph, grounded on the teacher's flag-based subcommand dispatch in
// mewkiz-flac's main.go.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/u3dgo/u3d"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: u3ddump [OPTION]... FILE")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "  -dump-tree     Print the node-name hierarchy.")
	fmt.Fprintln(os.Stderr, "  -view NAME     Assemble the scene from the named View (default: DefaultView, else the first View by name).")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func main() {
	var (
		dumpTree bool
		viewName string
	)
	flag.BoolVar(&dumpTree, "dump-tree", false, "print the node-name hierarchy")
	flag.StringVar(&viewName, "view", "", "assemble the scene from the named View")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	f, err := u3d.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("%+v", err)
	}

	if dumpTree {
		printTree(f)
	}

	if viewName == "" {
		viewName = firstView(f)
	}
	if viewName == "" {
		log.Fatalln("no View found in file")
	}

	scn, ok := f.Registry.CreateScene(viewName, 0, func(format string, args ...interface{}) {
		log.Printf("notice: "+format, args...)
	})
	if !ok {
		log.Fatalf("view %q does not belong to the World", viewName)
	}
	fmt.Printf("View %q: %d light(s), %d model(s), root node %q\n",
		viewName, len(scn.Lights), len(scn.Models), scn.RootNodeName)
}

// firstView returns "DefaultView" if such a View is registered, otherwise
// the lexicographically first registered View name, or "" if none exist.
func firstView(f *u3d.File) string {
	if _, ok := f.Registry.Views["DefaultView"]; ok {
		return "DefaultView"
	}
	names := make([]string, 0, len(f.Registry.Views))
	for n := range f.Registry.Views {
		names = append(names, n)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// printTree prints the node-name hierarchy rooted at the World ("" node),
// grounded on FileStructure::dump_tree/dump_tree_recursive in
// original_source/src/u3d_filestructure.cc.
func printTree(f *u3d.File) {
	children := map[string][]string{}
	for name, node := range f.Registry.Nodes {
		for _, p := range node.Parents {
			children[p.Name] = append(children[p.Name], name)
		}
	}
	for _, kids := range children {
		sort.Strings(kids)
	}
	printTreeNode(f, children, "", 0)
}

func printTreeNode(f *u3d.File, children map[string][]string, name string, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Print(" ")
	}
	switch {
	case f.Registry.Lights[name] != nil:
		fmt.Printf("Light <%s> => <%s>\n", name, f.Registry.Lights[name].ResourceName)
	case f.Registry.Models[name] != nil:
		fmt.Printf("Model <%s> => <%s>\n", name, f.Registry.Models[name].ResourceName)
	case f.Registry.Views[name] != nil:
		v := f.Registry.Views[name]
		root := ""
		if rsc, ok := f.Registry.ViewResources[v.ResourceName]; ok && len(rsc.Passes) > 0 {
			root = rsc.Passes[0].RootNodeName
		}
		fmt.Printf("View <%s> => <%s>\n", name, root)
	default:
		fmt.Printf("Group <%s>\n", name)
	}
	for _, child := range children[name] {
		printTreeNode(f, children, child, depth+1)
	}
}
