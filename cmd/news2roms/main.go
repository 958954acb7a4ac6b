/*
Copyright © 2019 the news2roms authors.
This file is part of news2roms.

news2roms is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

news2roms is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with news2roms.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command news2roms maps Global NEWS river nutrient exports onto a ROMS grid.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/news2roms/news2romsutil"
)

func main() {
	cfg := news2romsutil.InitializeConfig()
	if err := cfg.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
